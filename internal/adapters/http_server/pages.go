package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"bowlo_nl/internal/app"
	"bowlo_nl/internal/domain"
)

const topRatedLimit = 16

type ratingOption struct {
	Value    string
	Label    string
	Selected bool
}

var ratingFilters = []struct{ value, label string }{
	{"0", "Alle waarderingen"},
	{"4.5", "4.5+ Sterren"},
	{"4", "4.0+ Sterren"},
	{"3.5", "3.5+ Sterren"},
}

// notice maps a catalog error to the banner shown instead of results.
func notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNotConfigured):
		return noticeNotConfigured
	default:
		return noticeUnavailable
	}
}

// cacheFor marks healthy pages as cacheable; degraded ones are never cached.
func cacheFor(w http.ResponseWriter, err error, d time.Duration) {
	if err != nil {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(d.Seconds())))
}

func (h *Handlers) canonical(path string) string { return h.BaseURL + path }

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		top []domain.Center
		idx app.CityIndex
		g   errgroup.Group
	)
	g.Go(func() (err error) {
		top, err = h.Q.TopRated(ctx, topRatedLimit)
		return err
	})
	g.Go(func() (err error) {
		idx, err = h.Q.CityIndex(ctx)
		return err
	})
	err := g.Wait()

	cacheFor(w, err, time.Hour)
	h.views.render(w, http.StatusOK, "home", page{
		Title:       "BowlingBanen Nederland | Vind de beste bowlingbaan",
		Description: "Vind bowlingbanen in heel Nederland. Bekijk foto's, prijzen, openingstijden en reserveer vandaag nog jouw baan!",
		Canonical:   h.canonical("/"),
		Notice:      notice(err),
		Data: struct {
			Top     []domain.Center
			Popular []domain.CityCount
			Cities  int
		}{top, idx.Popular, len(idx.Popular) + len(idx.Others)},
	})
}

func (h *Handlers) center(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.Q.GetCenter(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.notFound(w, r)
		return
	case err != nil:
		cacheFor(w, err, 0)
		h.views.render(w, http.StatusServiceUnavailable, "notfound", page{
			Title:  "Bowlingbaan niet beschikbaar | BowloNL",
			Notice: notice(err),
			Data:   missing{Heading: "Bowlingbaan niet beschikbaar", Text: "Deze bowlingbaan kan op dit moment niet worden geladen."},
		})
		return
	}

	cacheFor(w, nil, 24*time.Hour)
	h.views.render(w, http.StatusOK, "center", page{
		Title:       c.Name + " | Bowlen in " + c.City().Name + " | BowloNL",
		Description: "Bekijk openingstijden, reviews en contactgegevens van " + c.Name + ", " + c.FormattedAddress + ".",
		Canonical:   h.canonical("/bowlingbaan/" + c.PlaceID),
		JSONLD:      centerJSONLD(c, h.BaseURL),
		Data:        c,
	})
}

func (h *Handlers) city(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "city")
	name := domain.TitleFromSlug(slug)
	centers, err := h.Q.ListByCitySlug(r.Context(), slug)

	data := struct {
		Name    string
		Term    string
		Hero    string
		Centers []domain.Center
	}{Name: name, Term: domain.SlugToSearchTerm(slug), Centers: centers}
	// best rated center's photo heads the page
	if len(centers) > 0 {
		data.Hero = centers[0].PrimaryPhoto()
	}

	p := page{
		Title:       "Bowlen in " + name + " | Vind de beste bowlingbanen",
		Description: "Op zoek naar een bowlingbaan in " + name + "? Bekijk alle locaties, lees reviews en reserveer direct de beste baan voor je volgende uitje.",
		Canonical:   h.canonical("/bowlen-in/" + strings.ToLower(slug)),
		Notice:      notice(err),
		Data:        data,
	}
	if len(centers) > 0 {
		p.JSONLD = cityJSONLD(centers, h.BaseURL)
	}
	cacheFor(w, err, 24*time.Hour)
	h.views.render(w, http.StatusOK, "city", p)
}

func (h *Handlers) cities(w http.ResponseWriter, r *http.Request) {
	idx, err := h.Q.CityIndex(r.Context())
	cacheFor(w, err, 24*time.Hour)
	h.views.render(w, http.StatusOK, "cities", page{
		Title:       "Bowlingbanen per Stad in Nederland | BowloNL",
		Description: "Vind de leukste en beste bowlingbanen in jouw stad. Selecteer een stad uit het overzicht en reserveer direct!",
		Canonical:   h.canonical("/steden"),
		Notice:      notice(err),
		Data:        idx,
	})
}

// search renders the first result set server side; the page script takes
// over through /api/v1/search.
func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	minRating, perr := parseMinRating(r.URL.Query().Get("min_rating"))
	if perr != nil {
		minRating = 0
	}
	centers, err := h.Q.Search(r.Context(), q, minRating)

	opts := make([]ratingOption, 0, len(ratingFilters))
	for _, f := range ratingFilters {
		v, _ := strconv.ParseFloat(f.value, 64)
		opts = append(opts, ratingOption{Value: f.value, Label: f.label, Selected: v == minRating})
	}

	w.Header().Set("Cache-Control", "no-store")
	h.views.render(w, http.StatusOK, "search", page{
		Title:       "Zoeken & Filteren | BowloNL",
		Description: "Zoek bowlingbanen op naam of stad en filter op waardering.",
		Canonical:   h.canonical("/zoeken"),
		Notice:      notice(err),
		Data: struct {
			Query   string
			Options []ratingOption
			Centers []domain.Center
		}{q, opts, centers},
	})
}

func (h *Handlers) tarieven(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, nil, 24*time.Hour)
	h.views.render(w, http.StatusOK, "tarieven", page{
		Title:       "Wat kost bowlen? | Tarieven & Prijzen | BowloNL",
		Description: "Ontdek de gemiddelde kosten voor een uurtje bowlen in Nederland. Bekijk tarieven voor daluren, weekenden, discobowlen en kinderfeestjes.",
		Canonical:   h.canonical("/tarieven"),
		Data:        tarieven,
	})
}

func (h *Handlers) tips(w http.ResponseWriter, r *http.Request) {
	cacheFor(w, nil, 24*time.Hour)
	h.views.render(w, http.StatusOK, "tips", page{
		Title:       "Bowling Tips & Spelregels | Verbeter je score | BowloNL",
		Description: "Lees de belangrijkste bowling spelregels, leer hoe de puntentelling werkt (strikes en spares) en ontdek handige tips om meer te gooien.",
		Canonical:   h.canonical("/tips"),
		Data:        tips,
	})
}

type missing struct {
	Heading string
	Text    string
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	log.Debug().Str("path", r.URL.Path).Msg("page not found")
	h.views.render(w, http.StatusNotFound, "notfound", page{
		Title: "Pagina niet gevonden | BowloNL",
		Data:  missing{Heading: "Niet gevonden", Text: "Deze pagina of bowlingbaan bestaat niet (meer)."},
	})
}

// parseMinRating accepts "", "4.5" and "4,5". Values outside 0..5 are rejected.
func parseMinRating(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < 0 || f > 5 {
		return 0, errors.New("min_rating must be between 0 and 5")
	}
	return f, nil
}
