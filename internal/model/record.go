package model

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Num is a numeric field that distinguishes "absent" from zero.
type Num struct {
	Value float64
	Valid bool
}

// ParseNum coerces a raw field into a Num. Anything that does not parse to a
// finite number is absent.
func ParseNum(s string) Num {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Num{}
	}
	return Num{Value: f, Valid: true}
}

// NumOf wraps an already-parsed float, rejecting non-finite values.
func NumOf(f float64) Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Num{}
	}
	return Num{Value: f, Valid: true}
}

// Record is one normalized shop/restaurant entry. Records are built once per
// dataset load and never mutated afterwards.
type Record struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Area     string   `json:"area"`
	Tags     []string `json:"tags,omitempty"`

	Rating  Num `json:"rating"`
	Reviews Num `json:"reviews"`
	Metric  Num `json:"metric"` // dataset-specific: price, point value, ...

	// Point is {lng, lat} per orb convention. Only meaningful when
	// HasCoords is true; HasCoords is computed once at normalization.
	Point     orb.Point `json:"point"`
	HasCoords bool      `json:"has_coords"`

	// MapURL is the precomputed external deep link (maplink.Resolve),
	// never derived at render time.
	MapURL string `json:"map_url"`

	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	Tel         string `json:"tel,omitempty"`
}

// HasTag reports tag membership; insertion order is irrelevant.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Lat and Lng unpack Point for display; callers must check HasCoords.
func (r *Record) Lat() float64 { return r.Point.Lat() }
func (r *Record) Lng() float64 { return r.Point.Lon() }
