// internal/adapters/places/client.go
package places

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bowlo_nl/internal/adapters/observability"
	"bowlo_nl/internal/domain"
)

// detailFields are the Place Details fields the catalog stores.
const detailFields = "place_id,name,formatted_address,rating,user_ratings_total," +
	"formatted_phone_number,international_phone_number,website,url,geometry," +
	"opening_hours,current_opening_hours,reviews"

type Client struct {
	base string
	hc   *http.Client
	key  string
	lang string
	rl   *rate.Limiter
}

func New(base, key, lang string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("places API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if lang == "" {
		lang = "nl"
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		lang: lang,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrNotFound   = fmt.Errorf("places: %w", domain.ErrNotFound)
	ErrForbidden  = fmt.Errorf("places: %w", domain.ErrForbidden)
	errOverQuota  = errors.New("places: over query limit")
	errNoAttempts = errors.New("places: no attempt succeeded")
)

// detailsResponse is the envelope of the Details endpoint. Failures arrive
// with HTTP 200 and a non-OK status.
type detailsResponse struct {
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
	Result       map[string]any `json:"result"`
}

// GetPlaceDetails returns the "result" object for placeID.
func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (map[string]any, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)
	q.Set("language", c.lang)
	q.Set("key", c.key)
	u := c.base + "/details/json?" + q.Encode()

	var lastErr error
	for i := 0; i < 4; i++ {
		var out detailsResponse
		err := c.get(ctx, u, &out)
		if err != nil {
			return nil, err
		}
		switch out.Status {
		case "OK":
			if out.Result == nil {
				return nil, ErrNotFound
			}
			return out.Result, nil
		case "NOT_FOUND", "ZERO_RESULTS", "INVALID_REQUEST":
			return nil, ErrNotFound
		case "REQUEST_DENIED":
			return nil, fmt.Errorf("%w: %s", ErrForbidden, out.ErrorMessage)
		case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
			lastErr = fmt.Errorf("%w: %s", errOverQuota, out.Status)
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		default:
			return nil, fmt.Errorf("places: unexpected status %q: %s", out.Status, out.ErrorMessage)
		}
	}
	if lastErr == nil {
		lastErr = errNoAttempts
	}
	return nil, lastErr
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "bowlo-nl/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("places", "details", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("places", "details", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
