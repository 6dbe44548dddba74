package domain

import (
	"encoding/json"
	"strings"
)

// Center is one row of the bowling_centers table. Optional columns are pointers.
type Center struct {
	PlaceID          string
	Name             string
	FormattedAddress string
	Rating           *float64
	TotalReviews     *int
	LocalPhotos      *string // comma separated relative paths, first is the primary image
	TopReviews       *string // JSON array of Review
	WeekdayText      *string // "Day: hours" lines separated by \n
	OpenNow          *bool
	Website          *string
	Phone            *string
	GoogleMapsURL    *string
	Lat, Lng         *float64
}

type Review struct {
	Author string  `json:"author"`
	Time   string  `json:"time"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text"`
}

type OpeningDay struct {
	Day    string
	Hours  string
	Closed bool
}

// Photos returns the non-empty photo paths in stored order.
func (c Center) Photos() []string {
	if c.LocalPhotos == nil {
		return nil
	}
	var out []string
	for _, p := range strings.Split(*c.LocalPhotos, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PrimaryPhoto returns the first photo path, or "" when the center has no image.
func (c Center) PrimaryPhoto() string {
	if ps := c.Photos(); len(ps) > 0 {
		return ps[0]
	}
	return ""
}

// Reviews decodes TopReviews. A missing or malformed value yields no reviews.
func (c Center) Reviews() []Review {
	if c.TopReviews == nil || strings.TrimSpace(*c.TopReviews) == "" {
		return nil
	}
	var out []Review
	if err := json.Unmarshal([]byte(*c.TopReviews), &out); err != nil {
		return nil
	}
	return out
}

// OpeningHours splits WeekdayText into days. Lines without a ": " separator keep
// the whole line as the day name and empty hours.
func (c Center) OpeningHours() []OpeningDay {
	if c.WeekdayText == nil {
		return nil
	}
	var out []OpeningDay
	for _, line := range strings.Split(*c.WeekdayText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		day, hours, _ := strings.Cut(line, ": ")
		out = append(out, OpeningDay{
			Day:    day,
			Hours:  hours,
			Closed: strings.Contains(hours, "Gesloten") || strings.Contains(hours, "Closed"),
		})
	}
	return out
}

func (c Center) City() City { return ExtractCity(c.FormattedAddress) }

func (c Center) IsOpen() bool { return c.OpenNow != nil && *c.OpenNow }
