// Package maplink builds the external Google Maps deep link for a record.
package maplink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/paulmach/orb"
)

const (
	homepage   = "https://www.google.com/maps"
	searchBase = "https://www.google.com/maps/search/?api=1&query="
	placeBase  = "https://www.google.com/maps/place/?q=place_id:"
)

// Input carries everything resolution may draw on, in priority order.
type Input struct {
	KnownURL string // operator-curated deep link, used only if Verified
	PlaceID  string // stable provider place identifier
	Title    string
	Address  string
	Area     string
	Region   string // prefecture-level administrative name from the config

	Point     orb.Point
	HasCoords bool
}

// Resolve picks the deep link by fixed priority: a verified curated link, a
// place-id lookup, a free-text query, a coordinate query, then the bare
// provider homepage. Curated links beat derived ones; a place id survives
// renames; coordinates come last since many venues share a building.
func Resolve(in Input) string {
	if Verified(in.KnownURL) {
		return in.KnownURL
	}
	if id := strings.TrimSpace(in.PlaceID); id != "" {
		return placeBase + escape(id)
	}
	if q := freeText(in); q != "" {
		return searchBase + escape(q)
	}
	if in.HasCoords {
		return searchBase + escape(fmt.Sprintf("%f,%f", in.Point.Lat(), in.Point.Lon()))
	}
	return homepage
}

// Verified reports whether a pre-supplied link belongs to the provider: the
// short-link domains, or a google.com host whose path starts with /maps.
func Verified(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case "goo.gl", "maps.app.goo.gl":
		return true
	}
	if host == "google.com" || strings.HasSuffix(host, ".google.com") {
		return strings.HasPrefix(u.Path, "/maps")
	}
	return false
}

// freeText joins title, address, area and region with single spaces,
// skipping empty parts.
func freeText(in Input) string {
	var parts []string
	for _, p := range []string{in.Title, in.Address, in.Area, in.Region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// escape percent-encodes a single query parameter value, with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
