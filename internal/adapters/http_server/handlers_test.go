package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "bowlo_nl/internal/adapters/http_server"
	"bowlo_nl/internal/app"
	"bowlo_nl/internal/domain"
	"bowlo_nl/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

func fixture() *memory.Repo {
	return memory.New(
		domain.Center{
			PlaceID:          "ChIJhelder",
			Name:             "Bowling Den Helder",
			FormattedAddress: "Lanenweg 2, 1785 AS Den Helder, Nederland",
			Rating:           ptr(4.2),
			TotalReviews:     ptr(312),
			LocalPhotos:      ptr("photos/helder-1.jpg,photos/helder-2.jpg"),
			TopReviews:       ptr(`[{"author":"An","time":"een week geleden","rating":5,"text":"Top avond"}]`),
			WeekdayText:      ptr("maandag: Gesloten\ndinsdag: 14:00–23:00"),
			OpenNow:          ptr(true),
			Phone:            ptr("0223 123 456"),
			Lat:              ptr(52.95),
			Lng:              ptr(4.76),
		},
		domain.Center{PlaceID: "ChIJams", Name: "Strike Amsterdam", FormattedAddress: "Kalverstraat 1, 1012 NX Amsterdam, Nederland", Rating: ptr(4.8)},
		domain.Center{PlaceID: "ChIJhaag", Name: "Bowling Den Haag", FormattedAddress: "Plein 1, 2511 CR Den Haag, Nederland", Rating: ptr(3.9)},
		domain.Center{PlaceID: "ChIJbroken", Name: "Kapotte Data", FormattedAddress: "Dorpsstraat 1", TopReviews: ptr("{not json"), WeekdayText: ptr("geen scheiding")},
	)
}

type downRepo struct{ *memory.Repo }

var errDown = errors.New("dial tcp: connection refused")

func (downRepo) GetCenter(context.Context, string) (domain.Center, error) {
	return domain.Center{}, errDown
}
func (downRepo) ListCenters(context.Context, domain.CentersQuery) ([]domain.Center, error) {
	return nil, errDown
}
func (downRepo) ListAddresses(context.Context) ([]domain.AddressRef, error) { return nil, errDown }

func newTestServer(t *testing.T, repo domain.CenterRepository) *httptest.Server {
	t.Helper()
	q := app.NewCatalogService(repo, nil, time.Minute)
	h, err := server.NewHandlers(q, "https://bowlo.test/")
	require.NoError(t, err)
	s := server.New()
	s.MountHandlers(h)
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, hdr ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestHome(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	// best rated first
	ams := strings.Index(body, "Strike Amsterdam")
	helder := strings.Index(body, "Bowling Den Helder")
	require.True(t, ams > 0 && helder > 0)
	assert.Less(t, ams, helder)
	assert.Contains(t, body, `href="/bowlingbaan/ChIJhelder"`)
	assert.Contains(t, body, `href="/bowlen-in/den-haag"`)
	assert.Contains(t, body, "Nu Open")
	assert.Contains(t, body, `src="/photos/helder-1.jpg"`)
	assert.NotContains(t, body, "niet gekoppeld")
}

func TestHome_NotConfigured(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "niet gekoppeld")
	assert.Contains(t, body, "Er zijn nog geen bowlingbanen om te tonen.")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestCenterPage(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/bowlingbaan/ChIJhelder")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Bowling Den Helder</h1>")
	assert.Contains(t, body, "Bowlen in Den Helder")
	assert.Contains(t, body, `href="tel:0223123456"`)
	assert.Contains(t, body, "photos/helder-2.jpg")
	assert.Contains(t, body, "Top avond")
	assert.Contains(t, body, `class="closed">Gesloten`)
	assert.Contains(t, body, "BowlingAlley")
	assert.Contains(t, body, `<link rel="canonical" href="https://bowlo.test/bowlingbaan/ChIJhelder">`)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "max-age=86400")
}

func TestCenterPage_MalformedFieldsDegrade(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/bowlingbaan/ChIJbroken")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Kapotte Data")
	assert.NotContains(t, body, "Beoordelingen")
	assert.Contains(t, body, "geen scheiding")
	assert.Contains(t, body, "Geen foto beschikbaar")
}

func TestCenterPage_NotFound(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/bowlingbaan/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Niet gevonden")
}

func TestCenterPage_StoreDown(t *testing.T) {
	ts := newTestServer(t, downRepo{memory.New()})
	resp, body := get(t, ts, "/bowlingbaan/ChIJhelder")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "tijdelijk niet bereikbaar")
}

func TestCityPage(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/bowlen-in/den-haag")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Bowlen in Den Haag | Vind de beste bowlingbanen</title>")
	assert.Contains(t, body, "Bowling Den Haag")
	assert.NotContains(t, body, "Strike Amsterdam")
	assert.Contains(t, body, "ItemList")

	resp, body = get(t, ts, "/bowlen-in/zwolle")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Geen bowlingbanen gevonden in zwolle.")
	assert.NotContains(t, body, "ItemList")
}

func TestCitiesPage(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/steden")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Populaire Steden")
	assert.Contains(t, body, `href="/bowlen-in/amsterdam"`)
	assert.Contains(t, body, `href="/bowlen-in/den-helder"`)
	assert.Contains(t, body, "1 locatie")
}

func TestSearchPage(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/zoeken?q=bowling&min_rating=4")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "1 resultaten gevonden voor &quot;bowling&quot;")
	assert.Contains(t, body, `<option value="4" selected>`)
	assert.Contains(t, body, "Bowling Den Helder")
	assert.NotContains(t, body, "Strike Amsterdam")
	assert.Contains(t, body, "AbortController")

	// an invalid filter falls back to all ratings
	_, body = get(t, ts, "/zoeken?min_rating=veel")
	assert.Contains(t, body, `<option value="0" selected>`)
}

func TestStaticPages(t *testing.T) {
	ts := newTestServer(t, nil)
	for path, want := range map[string]string{
		"/tarieven": "€ 22,50 - € 29,50",
		"/tips":     "Kies de juiste bal",
	} {
		resp, body := get(t, ts, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, want, path)
		assert.NotContains(t, body, "niet gekoppeld", path)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, fixture())
	resp, body := get(t, ts, "/bestaat-niet")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Pagina niet gevonden")
}

func TestHealthz(t *testing.T) {
	resp, body := get(t, newTestServer(t, fixture()), "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	_, body = get(t, newTestServer(t, nil), "/healthz")
	assert.Contains(t, body, "not configured")
}

type searchBody struct {
	Seq     uint64 `json:"seq"`
	Count   int    `json:"count"`
	Error   string `json:"error"`
	Results []struct {
		PlaceID string   `json:"place_id"`
		City    string   `json:"city"`
		Rating  *float64 `json:"rating"`
		URL     string   `json:"url"`
	} `json:"results"`
}

func TestSearchAPI(t *testing.T) {
	ts := newTestServer(t, fixture())

	resp, body := get(t, ts, "/api/v1/search?q=den&min_rating=4,0&seq=42")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got searchBody
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, uint64(42), got.Seq)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "ChIJhelder", got.Results[0].PlaceID)
	assert.Equal(t, "Den Helder", got.Results[0].City)
	assert.Equal(t, "/bowlingbaan/ChIJhelder", got.Results[0].URL)
	assert.Empty(t, got.Error)

	// same request with the returned ETag
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	resp, _ = get(t, ts, "/api/v1/search?q=den&min_rating=4,0&seq=42", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestSearchAPI_BadInput(t *testing.T) {
	ts := newTestServer(t, fixture())
	for _, qs := range []string{"min_rating=6", "min_rating=abc", "seq=-1"} {
		resp, body := get(t, ts, "/api/v1/search?"+qs)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, qs)
		assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"), qs)
		assert.Contains(t, body, `"status":400`, qs)
	}
}

func TestSearchAPI_Degraded(t *testing.T) {
	for name, tc := range map[string]struct {
		repo domain.CenterRepository
		want string
	}{
		"not configured": {nil, "not_configured"},
		"store down":     {downRepo{memory.New()}, "unavailable"},
	} {
		t.Run(name, func(t *testing.T) {
			resp, body := get(t, newTestServer(t, tc.repo), "/api/v1/search?q=x&seq=3")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var got searchBody
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tc.want, got.Error)
			assert.Equal(t, uint64(3), got.Seq)
			assert.Zero(t, got.Count)
			assert.NotNil(t, got.Results)
		})
	}
}

func TestSitemap(t *testing.T) {
	resp, body := get(t, newTestServer(t, fixture()), "/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	for _, loc := range []string{
		"<loc>https://bowlo.test</loc>",
		"<loc>https://bowlo.test/tips</loc>",
		"<loc>https://bowlo.test/bowlen-in/den-helder</loc>",
		"<loc>https://bowlo.test/bowlen-in/den-haag</loc>",
		"<loc>https://bowlo.test/bowlingbaan/ChIJbroken</loc>",
	} {
		assert.Contains(t, body, loc)
	}
	assert.Equal(t, 5+3+4, strings.Count(body, "<url>"))

	_, body = get(t, newTestServer(t, nil), "/sitemap.xml")
	assert.Equal(t, 5, strings.Count(body, "<url>"))
}
