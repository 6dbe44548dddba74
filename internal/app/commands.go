package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"bowlo_nl/internal/adapters/observability"
	"bowlo_nl/internal/domain"
)

type IngestionService struct {
	places domain.PlacesClient
	repo   domain.CenterRepository
	cache  domain.Cache
}

func NewIngestionService(p domain.PlacesClient, r domain.CenterRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{places: p, repo: r, cache: cache}
}

// IngestCenter fetches placeID from the places API and upserts it. Not found
// and forbidden responses are recorded as misses and end the run for that id
// without error; anything else bubbles up.
func (s *IngestionService) IngestCenter(ctx context.Context, placeID string) error {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return fmt.Errorf("empty place id")
	}

	p, err := s.places.GetPlaceDetails(ctx, placeID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.recordMiss(ctx, placeID, 404, "not found")
		observability.ObserveIngest("not_found")
		return nil
	case errors.Is(err, domain.ErrForbidden):
		s.recordMiss(ctx, placeID, 403, "forbidden")
		observability.ObserveIngest("forbidden")
		return nil
	case err != nil:
		observability.ObserveIngest("error")
		return err
	}

	c := mapCenter(placeID, p)
	if c.Name == "" || c.FormattedAddress == "" {
		s.recordMiss(ctx, placeID, 422, "incomplete")
		observability.ObserveIngest("incomplete")
		return nil
	}
	if err := s.repo.UpsertCenter(ctx, c); err != nil {
		observability.ObserveIngest("error")
		return fmt.Errorf("upsert center %s: %w", placeID, err)
	}

	// the center may have moved between cities, so its old city entry can
	// outlive this eviction until its TTL runs out
	if s.cache != nil {
		s.invalidateCenter(ctx, placeID)
		_ = s.cache.Del(ctx, cityKey(domain.SlugToSearchTerm(domain.ExtractCity(c.FormattedAddress).Slug)))
	}
	observability.ObserveIngest("upserted")
	return nil
}

func (s *IngestionService) recordMiss(ctx context.Context, placeID string, status int, reason string) {
	if err := s.repo.LogMiss(ctx, placeID, status, reason); err != nil {
		log.Warn().Err(err).Str("place_id", placeID).Msg("log miss failed")
	}
	// evict any stale snapshot
	if s.cache != nil {
		s.invalidateCenter(ctx, placeID)
	}
}

func (s *IngestionService) invalidateCenter(ctx context.Context, placeID string) {
	_ = s.cache.Del(ctx, centerKey(placeID))
	_ = s.cache.Del(ctx, cityCountsKey)
}
