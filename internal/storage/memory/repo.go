// Package memory is a CenterRepository held in process, loaded from a JSON
// export of the bowling_centers table. It mirrors the filtering and ordering
// of the MySQL repository.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"bowlo_nl/internal/domain"
)

// seedRow uses the column names of the bowling_centers table.
type seedRow struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	TotalReviews     *int     `json:"total_reviews"`
	LocalPhotos      *string  `json:"local_photos"`
	TopReviews       *string  `json:"top_reviews"`
	WeekdayText      *string  `json:"weekday_text"`
	OpenNow          *bool    `json:"open_now"`
	Website          *string  `json:"website"`
	Phone            *string  `json:"phone"`
	GoogleMapsURL    *string  `json:"google_maps_url"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
}

type Repo struct {
	mu      sync.RWMutex
	centers []domain.Center // storage order
	misses  map[string]int
}

func New(centers ...domain.Center) *Repo {
	r := &Repo{misses: map[string]int{}}
	for _, c := range centers {
		_ = r.UpsertCenter(context.Background(), c)
	}
	return r
}

// Load reads a JSON array of bowling_centers rows.
func Load(path string) (*Repo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memory: read seed: %w", err)
	}
	var rows []seedRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("memory: decode seed %s: %w", path, err)
	}
	r := New()
	for _, row := range rows {
		r.centers = append(r.centers, domain.Center(row))
	}
	return r, nil
}

func (r *Repo) UpsertCenter(_ context.Context, c domain.Center) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.centers {
		if r.centers[i].PlaceID == c.PlaceID {
			c.LocalPhotos = r.centers[i].LocalPhotos
			if c.TopReviews == nil {
				c.TopReviews = r.centers[i].TopReviews
			}
			if c.WeekdayText == nil {
				c.WeekdayText = r.centers[i].WeekdayText
			}
			r.centers[i] = c
			return nil
		}
	}
	r.centers = append(r.centers, c)
	return nil
}

func (r *Repo) LogMiss(_ context.Context, placeID string, status int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[placeID+"|"+reason] = status
	return nil
}

func (r *Repo) GetCenter(_ context.Context, placeID string) (domain.Center, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.centers {
		if c.PlaceID == placeID {
			return c, nil
		}
	}
	return domain.Center{}, domain.ErrNotFound
}

func (r *Repo) ListCenters(ctx context.Context, q domain.CentersQuery) ([]domain.Center, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	addr := strings.ToLower(q.AddressContains)
	text := strings.ToLower(q.Text)
	var out []domain.Center
	for _, c := range r.centers {
		if addr != "" && !strings.Contains(strings.ToLower(c.FormattedAddress), addr) {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(c.Name), text) &&
			!strings.Contains(strings.ToLower(c.FormattedAddress), text) {
			continue
		}
		// NULL never satisfies rating >= x
		if q.MinRating != nil && (c.Rating == nil || *c.Rating < *q.MinRating) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Rating, out[j].Rating
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *Repo) ListAddresses(ctx context.Context) ([]domain.AddressRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AddressRef, 0, len(r.centers))
	for _, c := range r.centers {
		out = append(out, domain.AddressRef{PlaceID: c.PlaceID, FormattedAddress: c.FormattedAddress})
	}
	return out, nil
}
