package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bowlo_nl/internal/app"
	"bowlo_nl/internal/domain"
	"bowlo_nl/internal/storage/memory"
)

// ---- fakes ----

// fakeCache round-trips values through JSON like the redis adapter does.
type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

var errStoreDown = errors.New("dial tcp: connection refused")

type brokenRepo struct{}

func (brokenRepo) UpsertCenter(context.Context, domain.Center) error        { return errStoreDown }
func (brokenRepo) LogMiss(context.Context, string, int, string) error       { return errStoreDown }
func (brokenRepo) GetCenter(context.Context, string) (domain.Center, error) { return domain.Center{}, errStoreDown }
func (brokenRepo) ListCenters(context.Context, domain.CentersQuery) ([]domain.Center, error) {
	return nil, errStoreDown
}
func (brokenRepo) ListAddresses(context.Context) ([]domain.AddressRef, error) { return nil, errStoreDown }

func ptr[T any](v T) *T { return &v }

func center(id, name, addr string, rating *float64) domain.Center {
	return domain.Center{PlaceID: id, Name: name, FormattedAddress: addr, Rating: rating}
}

func fixture() *memory.Repo {
	return memory.New(
		center("helder", "Bowling Den Helder", "Lanenweg 2, 1785 AS Den Helder, Nederland", ptr(4.2)),
		center("ams", "Strike Amsterdam", "Kalverstraat 1, 1012 NX Amsterdam, Nederland", ptr(4.8)),
		center("zeist", "Bowling Zeist", "Amsterdamseweg 12, 3701 AA Zeist, Nederland", ptr(4.5)),
		center("ams2", "Bowlero Amsterdam", "Arenapoort 1, 1101 DS Amsterdam, Nederland", ptr(4.5)),
		center("haag", "Bowling Den Haag", "Plein 1, 2511 CR Den Haag, Nederland", ptr(3.9)),
		center("scheveningen", "Bowling Scheveningen", "Strandweg 1, 2586 JW Den Haag, Nederland", nil),
		center("nocomma", "Dorpsbaan", "Dorpsstraat 1", ptr(4.9)),
	)
}

func ids(cs []domain.Center) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.PlaceID)
	}
	return out
}

// ---- tests ----

func TestListAll_OrderedByRating(t *testing.T) {
	s := app.NewCatalogService(fixture(), nil, time.Minute)
	out, err := s.ListAll(context.Background())
	require.NoError(t, err)
	// zeist and ams2 tie at 4.5 and keep storage order; unrated last
	assert.Equal(t, []string{"nocomma", "ams", "zeist", "ams2", "helder", "haag", "scheveningen"}, ids(out))
}

func TestListAll_UnclassifiableAddresses(t *testing.T) {
	repo := memory.New(
		center("a", "A", "Lanenweg 2, 1785 AS Den Helder", nil),
		center("b", "B", "Kerkstraat 5, NoCommaHere", nil),
	)
	s := app.NewCatalogService(repo, nil, time.Minute)
	out, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestListByCity_SubstringOverMatches(t *testing.T) {
	s := app.NewCatalogService(fixture(), nil, time.Minute)
	out, err := s.ListByCity(context.Background(), "amsterdam")
	require.NoError(t, err)
	// Amsterdamseweg in Zeist matches as well.
	assert.Equal(t, []string{"ams", "zeist", "ams2"}, ids(out))
}

func TestListByCity_DiacriticsNotFolded(t *testing.T) {
	repo := memory.New(center("x", "Bowling Sint-Oedenrode", "Markt 1, 5491 AA Sint-Oedenrode, Nederland", ptr(4.0)))
	s := app.NewCatalogService(repo, nil, time.Minute)
	out, err := s.ListByCity(context.Background(), "sint-oëdenrode")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestListByCitySlug(t *testing.T) {
	s := app.NewCatalogService(fixture(), nil, time.Minute)
	out, err := s.ListByCitySlug(context.Background(), "den-haag")
	require.NoError(t, err)
	assert.Equal(t, []string{"haag", "scheveningen"}, ids(out))
}

func TestListByCity_Cached(t *testing.T) {
	repo := fixture()
	cache := &fakeCache{}
	s := app.NewCatalogService(repo, cache, time.Minute)
	ctx := context.Background()

	first, err := s.ListByCity(ctx, "Den Helder")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// mutate the store; the second read comes from cache
	require.NoError(t, repo.UpsertCenter(ctx, center("helder2", "Nieuw", "Weg 1, 1781 AA Den Helder, Nederland", ptr(5.0))))
	second, err := s.ListByCity(ctx, "den helder")
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(second))
}

func TestSearch(t *testing.T) {
	s := app.NewCatalogService(fixture(), nil, time.Minute)
	ctx := context.Background()

	high, err := s.Search(ctx, "", 4.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"nocomma", "ams", "zeist", "ams2"}, ids(high))
	for _, c := range high {
		assert.GreaterOrEqual(t, *c.Rating, 4.5)
	}

	text, err := s.Search(ctx, "  BOWLING ", 4.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeist", "helder"}, ids(text))

	byAddr, err := s.Search(ctx, "den haag", 0)
	require.NoError(t, err)
	// unrated centers never satisfy the rating filter
	assert.Equal(t, []string{"haag"}, ids(byAddr))
}

func TestGetCenter(t *testing.T) {
	cache := &fakeCache{}
	repo := fixture()
	s := app.NewCatalogService(repo, cache, time.Minute)
	ctx := context.Background()

	c, err := s.GetCenter(ctx, "ams")
	require.NoError(t, err)
	assert.Equal(t, "Strike Amsterdam", c.Name)
	assert.Contains(t, cache.store, "center:ams")

	_, err = s.GetCenter(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCountByCity(t *testing.T) {
	s := app.NewCatalogService(fixture(), nil, time.Minute)
	counts, err := s.CountByCity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Den Helder": 1, "Amsterdam": 2, "Zeist": 1, "Den Haag": 2}, counts)

	sum := 0
	for _, n := range counts {
		sum += n
	}
	// "Dorpsstraat 1" is unclassifiable and dropped
	assert.Equal(t, 6, sum)
}

func TestCityIndex(t *testing.T) {
	repo := fixture()
	require.NoError(t, repo.UpsertCenter(context.Background(),
		center("breda", "Breda Bowl", "Weg 2, 4811 AA breda, Nederland", ptr(4.0))))
	s := app.NewCatalogService(repo, nil, time.Minute)

	idx, err := s.CityIndex(context.Background())
	require.NoError(t, err)

	var popular []string
	for _, c := range idx.Popular {
		popular = append(popular, c.Name)
	}
	assert.Equal(t, []string{"Amsterdam", "Breda", "Den Haag"}, popular)
	assert.Equal(t, "den-haag", idx.Popular[2].Slug)
	assert.Equal(t, 2, idx.Popular[2].Count)

	var others []string
	for _, c := range idx.Others {
		others = append(others, c.Name)
	}
	assert.Equal(t, []string{"Den Helder", "Zeist"}, others)
}

func TestSitemapKeys(t *testing.T) {
	s := app.NewCatalogService(fixture(), nil, time.Minute)
	keys, err := s.SitemapKeys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys.PlaceIDs, 7)
	assert.Equal(t, []string{"den-helder", "amsterdam", "zeist", "den-haag"}, keys.CitySlugs)
}

func TestNotConfigured(t *testing.T) {
	s := app.NewCatalogService(nil, nil, time.Minute)
	ctx := context.Background()
	assert.False(t, s.Configured())

	all, err := s.ListAll(ctx)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, all)

	byCity, err := s.ListByCity(ctx, "amsterdam")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, byCity)

	found, err := s.Search(ctx, "", 0)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, found)

	_, err = s.GetCenter(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	counts, err := s.CountByCity(ctx)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, counts)

	_, err = s.SitemapKeys(ctx)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestStoreUnreachable(t *testing.T) {
	s := app.NewCatalogService(brokenRepo{}, nil, time.Minute)
	ctx := context.Background()

	out, err := s.Search(ctx, "x", 0)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domain.ErrNotConfigured)
	assert.Empty(t, out)

	_, err = s.GetCenter(ctx, "x")
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	counts, err := s.CountByCity(ctx)
	assert.Error(t, err)
	assert.Empty(t, counts)
}
