package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"bowlo_nl/internal/domain"
)

// maxStoredReviews caps the reviews kept per center.
const maxStoredReviews = 5

/********** alias registries **********/

var centerAliases = map[string][]string{
	"name":    {"name"},
	"address": {"formatted_address", "vicinity"},
	"phone":   {"formatted_phone_number", "international_phone_number"},
	"website": {"website"},
	"maps":    {"url"},
}

var reviewAliases = map[string][]string{
	"author": {"author_name", "author"},
	"time":   {"relative_time_description", "time_description"},
	"text":   {"text", "original_text.text"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getIntFlexible(m map[string]any, paths ...string) *int {
	if f := getFloatFlexible(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

func getBool(m map[string]any, paths ...string) *bool {
	for _, k := range paths {
		if b, ok := lookupAny(m, k).(bool); ok {
			return &b
		}
	}
	return nil
}

// firstSliceStrings: first non-empty []any of strings among paths.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** center mapper **********/

// mapCenter converts a Place Details result into a Center. LocalPhotos is
// never set here: photos are curated by hand.
func mapCenter(placeID string, p map[string]any) domain.Center {
	c := domain.Center{
		PlaceID:          placeID,
		Name:             deref(firstNonEmptyAlias(p, centerAliases, "name")),
		FormattedAddress: deref(firstNonEmptyAlias(p, centerAliases, "address")),
		Rating:           getFloatFlexible(p, "rating"),
		TotalReviews:     getIntFlexible(p, "user_ratings_total"),
		Website:          firstNonEmptyAlias(p, centerAliases, "website"),
		Phone:            firstNonEmptyAlias(p, centerAliases, "phone"),
		GoogleMapsURL:    firstNonEmptyAlias(p, centerAliases, "maps"),
		Lat:              getFloatFlexible(p, "geometry.location.lat"),
		Lng:              getFloatFlexible(p, "geometry.location.lng"),
		OpenNow:          getBool(p, "current_opening_hours.open_now", "opening_hours.open_now"),
	}
	if id := lookupStr(p, "place_id"); c.PlaceID == "" {
		c.PlaceID = id
	}
	if days := firstSliceStrings(p, "opening_hours.weekday_text", "current_opening_hours.weekday_text"); len(days) > 0 {
		c.WeekdayText = ptrStr(strings.Join(days, "\n"))
	}
	if revs := mapReviews(p); len(revs) > 0 {
		b, err := json.Marshal(revs)
		if err != nil {
			log.Error().Err(err).
				Str("context", "mapCenter").
				Str("place_id", c.PlaceID).
				Msg("failed to marshal reviews to JSON")
		} else {
			c.TopReviews = ptrStr(string(b))
		}
	}
	return c
}

/********** reviews mapper **********/

// mapReviews keeps the first maxStoredReviews reviews that carry text.
func mapReviews(p map[string]any) []domain.Review {
	raw, _ := lookupAny(p, "reviews").([]any)
	out := make([]domain.Review, 0, maxStoredReviews)
	for _, it := range raw {
		if len(out) == maxStoredReviews {
			break
		}
		r, ok := it.(map[string]any)
		if !ok {
			continue
		}
		text := deref(firstNonEmptyAlias(r, reviewAliases, "text"))
		if text == "" {
			continue
		}
		rv := domain.Review{
			Author: deref(firstNonEmptyAlias(r, reviewAliases, "author")),
			Time:   deref(firstNonEmptyAlias(r, reviewAliases, "time")),
			Text:   text,
		}
		if f := getFloatFlexible(r, "rating"); f != nil {
			rv.Rating = *f
		}
		out = append(out, rv)
	}
	return out
}
