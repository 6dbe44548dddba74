package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"bowlo_nl/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames are the templates rendered inside layout.html.
var pageNames = []string{"home", "center", "city", "cities", "search", "tarieven", "tips", "notfound"}

// page is what every template receives.
type page struct {
	Title       string
	Description string
	Canonical   string
	Notice      string // shown above the content when the catalog is degraded
	JSONLD      any
	Year        int
	Data        any
}

const (
	noticeNotConfigured = "De catalogus is nog niet gekoppeld. Er zijn nog geen bowlingbanen om te tonen."
	noticeUnavailable   = "De catalogus is tijdelijk niet bereikbaar. Probeer het later opnieuw."
)

var funcs = template.FuncMap{
	"rating": func(r *float64) string {
		if r == nil {
			return "N/A"
		}
		return strconv.FormatFloat(*r, 'f', 1, 64)
	},
	"count": func(n *int) int {
		if n == nil {
			return 0
		}
		return *n
	},
	"plural": func(n int) string {
		if n == 1 {
			return "locatie"
		}
		return "locaties"
	},
	"tel": func(s string) string { return strings.Join(strings.Fields(s), "") },
	"stars": func(r float64) []bool {
		out := make([]bool, 5)
		for i := range out {
			out[i] = float64(i) < r
		}
		return out
	},
	"extraPhotos": func(c domain.Center) []string {
		if ps := c.Photos(); len(ps) > 1 {
			return ps[1:]
		}
		return nil
	},
	"add": func(a, b int) int { return a + b },
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// render executes into a buffer first so a template error never leaves a
// half written page behind.
func (r *renderer) render(w http.ResponseWriter, status int, name string, p page) {
	t, ok := r.pages[name]
	if !ok {
		log.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p.Year == 0 {
		p.Year = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("template", name).Msg("write page failed")
	}
}
