package httpserver

import "bowlo_nl/internal/domain"

// centerJSONLD describes a center as a schema.org BowlingAlley.
func centerJSONLD(c domain.Center, base string) map[string]any {
	ld := map[string]any{
		"@context": "https://schema.org",
		"@type":    "BowlingAlley",
		"name":     c.Name,
		"url":      base + "/bowlingbaan/" + c.PlaceID,
		"address": map[string]any{
			"@type":          "PostalAddress",
			"streetAddress":  c.FormattedAddress,
			"addressCountry": "NL",
		},
	}
	if c.Website != nil && *c.Website != "" {
		ld["url"] = *c.Website
	}
	if p := c.PrimaryPhoto(); p != "" {
		ld["image"] = base + "/" + p
	}
	if c.Phone != nil {
		ld["telephone"] = *c.Phone
	}
	if c.Lat != nil && c.Lng != nil {
		ld["geo"] = map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  *c.Lat,
			"longitude": *c.Lng,
		}
	}
	if c.Rating != nil {
		agg := map[string]any{"@type": "AggregateRating", "ratingValue": *c.Rating}
		if c.TotalReviews != nil {
			agg["reviewCount"] = *c.TotalReviews
		}
		ld["aggregateRating"] = agg
	}
	return ld
}

// cityJSONLD lists the centers of a city page in display order.
func cityJSONLD(centers []domain.Center, base string) map[string]any {
	items := make([]map[string]any, 0, len(centers))
	for i, c := range centers {
		name := c.Name
		if name == "" {
			name = "Onbekende bowlingbaan"
		}
		items = append(items, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item": map[string]any{
				"@type": "BowlingAlley",
				"name":  name,
				"url":   base + "/bowlingbaan/" + c.PlaceID,
			},
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"itemListElement": items,
	}
}
