package httpserver

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

var staticRoutes = []string{"", "/zoeken", "/steden", "/tarieven", "/tips"}

// sitemap lists static routes, then city pages, then center pages. When the
// catalog cannot be read only the static routes are listed.
func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format("2006-01-02")
	set := urlset{NS: sitemapNS}
	add := func(path, freq, prio string) {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.BaseURL + path, LastMod: now, ChangeFreq: freq, Priority: prio})
	}

	for _, p := range staticRoutes {
		prio := "0.8"
		if p == "" {
			prio = "1.0"
		}
		add(p, "weekly", prio)
	}

	keys, err := h.Q.SitemapKeys(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("sitemap limited to static routes")
	}
	for _, slug := range keys.CitySlugs {
		add("/bowlen-in/"+url.PathEscape(slug), "weekly", "0.9")
	}
	for _, id := range keys.PlaceIDs {
		add("/bowlingbaan/"+url.PathEscape(id), "monthly", "0.7")
	}

	body, merr := xml.MarshalIndent(set, "", "  ")
	if merr != nil {
		log.Error().Err(merr).Msg("marshal sitemap failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err == nil {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write sitemap failed")
	}
}
