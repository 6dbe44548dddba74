package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"bowlo_nl/internal/adapters/observability"
	"bowlo_nl/internal/domain"
)

// PopularCities are featured on the city index when the catalog has them.
var PopularCities = []string{
	"Amsterdam", "Rotterdam", "Den Haag", "Utrecht", "Eindhoven",
	"Tilburg", "Groningen", "Almere", "Breda", "Nijmegen",
	"Apeldoorn", "Haarlem", "Arnhem", "Enschede", "Amersfoort",
}

// CatalogService answers every read the site makes. A nil repository means no
// store is configured: all queries then return domain.ErrNotConfigured.
type CatalogService struct {
	repo     domain.CenterRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(r domain.CenterRepository, c domain.Cache, ttl time.Duration) *CatalogService {
	if c == nil {
		c = noCache{}
	}
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl}
}

// Configured reports whether a store is wired.
func (s *CatalogService) Configured() bool { return s.repo != nil }

// ListAll returns every center, best rated first.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Center, error) {
	return s.list(ctx, "list_all", domain.CentersQuery{})
}

func (s *CatalogService) TopRated(ctx context.Context, limit int) ([]domain.Center, error) {
	return s.list(ctx, "top_rated", domain.CentersQuery{Limit: limit})
}

// ListByCity returns centers whose formatted address contains city, ignoring
// case. This is a substring match on the whole address: "amsterdam" also
// matches an "Amsterdamseweg" in another town, and diacritics are not folded.
func (s *CatalogService) ListByCity(ctx context.Context, city string) ([]domain.Center, error) {
	city = strings.TrimSpace(city)
	key := cityKey(city)
	var out []domain.Center
	if s.repo != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	out, err := s.list(ctx, "list_by_city", domain.CentersQuery{AddressContains: city})
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttlSec())
	return out, nil
}

// ListByCitySlug resolves a routed city slug to its address substring.
func (s *CatalogService) ListByCitySlug(ctx context.Context, slug string) ([]domain.Center, error) {
	return s.ListByCity(ctx, domain.SlugToSearchTerm(slug))
}

// Search keeps rated centers with rating >= minRating whose name or address
// contains text (any center when text is blank), best rated first.
func (s *CatalogService) Search(ctx context.Context, text string, minRating float64) ([]domain.Center, error) {
	return s.list(ctx, "search", domain.CentersQuery{
		Text:      strings.TrimSpace(text),
		MinRating: &minRating,
	})
}

func (s *CatalogService) GetCenter(ctx context.Context, placeID string) (domain.Center, error) {
	if s.repo == nil {
		observability.ObserveCatalog("get_center", "not_configured")
		return domain.Center{}, domain.ErrNotConfigured
	}
	key := centerKey(placeID)
	var c domain.Center
	if ok, _ := s.cache.Get(ctx, key, &c); ok {
		return c, nil
	}
	c, err := s.repo.GetCenter(ctx, placeID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveCatalog("get_center", "empty")
		return domain.Center{}, err
	case err != nil:
		observability.ObserveCatalog("get_center", "error")
		log.Error().Err(err).Str("place_id", placeID).Msg("get center failed")
		return domain.Center{}, err
	}
	observability.ObserveCatalog("get_center", "ok")
	_ = s.cache.Set(ctx, key, c, s.ttlSec())
	return c, nil
}

// CountByCity tallies centers per extracted city name. Addresses that cannot
// be classified are left out, so the sum can be lower than the center count.
func (s *CatalogService) CountByCity(ctx context.Context) (map[string]int, error) {
	if s.repo == nil {
		observability.ObserveCatalog("count_by_city", "not_configured")
		return map[string]int{}, domain.ErrNotConfigured
	}
	counts := map[string]int{}
	if ok, _ := s.cache.Get(ctx, cityCountsKey, &counts); ok {
		return counts, nil
	}
	addrs, err := s.repo.ListAddresses(ctx)
	if err != nil {
		observability.ObserveCatalog("count_by_city", "error")
		log.Error().Err(err).Msg("list addresses failed")
		return map[string]int{}, err
	}
	for _, a := range addrs {
		if c := domain.ExtractCity(a.FormattedAddress); c.Classified {
			counts[c.Name]++
		}
	}
	observability.ObserveCatalog("count_by_city", outcome(len(counts)))
	_ = s.cache.Set(ctx, cityCountsKey, counts, s.ttlSec())
	return counts, nil
}

type CityIndex struct {
	// Popular holds the PopularCities present in the catalog, A-Z.
	Popular []domain.CityCount
	// Others holds every remaining city, A-Z.
	Others []domain.CityCount
}

func (s *CatalogService) CityIndex(ctx context.Context) (CityIndex, error) {
	counts, err := s.CountByCity(ctx)
	if err != nil {
		return CityIndex{}, err
	}
	return buildCityIndex(counts), nil
}

func buildCityIndex(counts map[string]int) CityIndex {
	popular := make(map[string]string, len(PopularCities)) // lower -> display
	for _, p := range PopularCities {
		popular[strings.ToLower(p)] = p
	}

	var idx CityIndex
	for name, n := range counts {
		cc := domain.CityCount{
			City:  domain.City{Name: name, Slug: domain.Slugify(name), Classified: true},
			Count: n,
		}
		if display, ok := popular[strings.ToLower(name)]; ok {
			cc.Name = display
			idx.Popular = append(idx.Popular, cc)
			continue
		}
		idx.Others = append(idx.Others, cc)
	}
	byName := func(cs []domain.CityCount) {
		sort.Slice(cs, func(i, j int) bool {
			a, b := strings.ToLower(cs[i].Name), strings.ToLower(cs[j].Name)
			if a == b {
				return cs[i].Name < cs[j].Name
			}
			return a < b
		})
	}
	byName(idx.Popular)
	byName(idx.Others)
	return idx
}

// SitemapKeys lists every routable detail and listing key.
type SitemapKeys struct {
	PlaceIDs  []string
	CitySlugs []string // de-duplicated, first-seen order
}

func (s *CatalogService) SitemapKeys(ctx context.Context) (SitemapKeys, error) {
	if s.repo == nil {
		return SitemapKeys{}, domain.ErrNotConfigured
	}
	addrs, err := s.repo.ListAddresses(ctx)
	if err != nil {
		observability.ObserveCatalog("sitemap", "error")
		log.Error().Err(err).Msg("list addresses for sitemap failed")
		return SitemapKeys{}, err
	}
	var keys SitemapKeys
	seen := map[string]struct{}{}
	for _, a := range addrs {
		keys.PlaceIDs = append(keys.PlaceIDs, a.PlaceID)
		c := domain.ExtractCity(a.FormattedAddress)
		if !c.Classified {
			continue
		}
		if _, dup := seen[c.Slug]; dup {
			continue
		}
		seen[c.Slug] = struct{}{}
		keys.CitySlugs = append(keys.CitySlugs, c.Slug)
	}
	observability.ObserveCatalog("sitemap", outcome(len(keys.PlaceIDs)))
	return keys, nil
}

func (s *CatalogService) list(ctx context.Context, op string, q domain.CentersQuery) ([]domain.Center, error) {
	if s.repo == nil {
		observability.ObserveCatalog(op, "not_configured")
		return nil, domain.ErrNotConfigured
	}
	out, err := s.repo.ListCenters(ctx, q)
	if err != nil {
		observability.ObserveCatalog(op, "error")
		log.Error().Err(err).Str("op", op).Msg("catalog query failed")
		return nil, err
	}
	observability.ObserveCatalog(op, outcome(len(out)))
	return out, nil
}

func (s *CatalogService) ttlSec() int { return int(s.cacheTTL.Seconds()) }

func outcome(n int) string {
	if n == 0 {
		return "empty"
	}
	return "ok"
}

// ---- cache keys ----

const cityCountsKey = "cities:counts"

func centerKey(placeID string) string { return "center:" + placeID }

func cityKey(term string) string { return "city:" + strings.ToLower(strings.TrimSpace(term)) }

type noCache struct{}

func (noCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) Set(context.Context, string, any, int) error    { return nil }
func (noCache) Del(context.Context, string) error              { return nil }
