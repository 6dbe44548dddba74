// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"bowlo_nl/internal/app"
	"bowlo_nl/internal/domain"
)

type Handlers struct {
	Q       *app.CatalogService
	BaseURL string // absolute site root without trailing slash, used in canonical links and the sitemap
	views   *renderer
}

func NewHandlers(q *app.CatalogService, baseURL string) (*Handlers, error) {
	v, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handlers{Q: q, BaseURL: strings.TrimRight(baseURL, "/"), views: v}, nil
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)

	s.mux.Get("/", h.home)
	s.mux.Get("/bowlingbaan/{id}", h.center)
	s.mux.Get("/bowlen-in/{city}", h.city)
	s.mux.Get("/steden", h.cities)
	s.mux.Get("/zoeken", h.search)
	s.mux.Get("/tarieven", h.tarieven)
	s.mux.Get("/tips", h.tips)
	s.mux.Get("/sitemap.xml", h.sitemap)

	s.mux.Get("/api/v1/search", h.searchAPI)

	s.mux.NotFound(h.notFound)
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if !h.Q.Configured() {
		_, _ = w.Write([]byte("ok (catalog not configured)"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

type searchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	City             string   `json:"city,omitempty"`
	Rating           *float64 `json:"rating"`
	TotalReviews     *int     `json:"total_reviews"`
	OpenNow          bool     `json:"open_now"`
	Photo            string   `json:"photo,omitempty"`
	URL              string   `json:"url"`
}

// searchResponse echoes Seq so the page script can drop responses to
// superseded requests.
type searchResponse struct {
	Seq       uint64         `json:"seq"`
	Query     string         `json:"query"`
	MinRating float64        `json:"min_rating"`
	Count     int            `json:"count"`
	Results   []searchResult `json:"results"`
	Error     string         `json:"error,omitempty"` // not_configured|unavailable
}

func toSearchResult(c domain.Center) searchResult {
	res := searchResult{
		PlaceID:          c.PlaceID,
		Name:             c.Name,
		FormattedAddress: c.FormattedAddress,
		Rating:           c.Rating,
		TotalReviews:     c.TotalReviews,
		OpenNow:          c.IsOpen(),
		Photo:            c.PrimaryPhoto(),
		URL:              "/bowlingbaan/" + c.PlaceID,
	}
	if city := c.City(); city.Classified {
		res.City = city.Name
	}
	return res
}

func (h *Handlers) searchAPI(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	var seq uint64
	if s := qs.Get("seq"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid seq", "seq must be a non-negative integer")
			return
		}
		seq = n
	}
	minRating, err := parseMinRating(qs.Get("min_rating"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid min_rating", "min_rating must be a number between 0 and 5")
		return
	}
	q := strings.TrimSpace(qs.Get("q"))

	centers, err := h.Q.Search(r.Context(), q, minRating)
	resp := searchResponse{Seq: seq, Query: q, MinRating: minRating, Results: make([]searchResult, 0, len(centers))}
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		resp.Error = "not_configured"
	case err != nil:
		resp.Error = "unavailable"
	}
	for _, c := range centers {
		resp.Results = append(resp.Results, toSearchResult(c))
	}
	resp.Count = len(resp.Results)

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write search body")
	}
}
