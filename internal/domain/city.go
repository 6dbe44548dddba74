package domain

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnclassifiedCity is the grouping used for addresses without a locality component.
const UnclassifiedCity = "Nederland"

// City is the display grouping derived from a formatted address.
type City struct {
	Name       string
	Slug       string
	Classified bool
}

type CityCount struct {
	City
	Count int
}

var (
	// Dutch postcode "1234 AB" followed by the locality.
	postcodeCity = regexp.MustCompile(`(?i)\d{4}\s*[a-z]{2}\s+(.*)`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// ExtractCity derives the city from the second-to-last comma separated component
// of addr. It never fails: addresses with fewer than two components map to
// UnclassifiedCity, and a locality without a recognizable postcode is used as is.
func ExtractCity(addr string) City {
	parts := strings.Split(addr, ",")
	if len(parts) < 2 {
		return City{Name: UnclassifiedCity}
	}
	locality := strings.TrimSpace(parts[len(parts)-2])
	name := locality
	if m := postcodeCity.FindStringSubmatch(locality); m != nil {
		name = strings.TrimSpace(m[1])
	}
	if name == "" {
		return City{Name: UnclassifiedCity}
	}
	return City{Name: name, Slug: Slugify(name), Classified: true}
}

// Slugify lowercases name and joins whitespace runs with a single hyphen.
func Slugify(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// TitleFromSlug rebuilds a display title by capitalizing every hyphen separated
// token. This does not round-trip names with irregular casing or real hyphens
// ("'s-Hertogenbosch" loses its hyphen).
func TitleFromSlug(slug string) string {
	// Casers keep state; one per call.
	title := cases.Title(language.Dutch, cases.NoLower)
	tokens := strings.Split(SlugToSearchTerm(slug), " ")
	for i, t := range tokens {
		tokens[i] = title.String(t)
	}
	return strings.Join(tokens, " ")
}

// SlugToSearchTerm turns a routed slug back into the substring used to match
// addresses: percent-decoded, hyphens as spaces.
func SlugToSearchTerm(slug string) string {
	if s, err := url.PathUnescape(slug); err == nil {
		slug = s
	}
	return strings.ReplaceAll(slug, "-", " ")
}
