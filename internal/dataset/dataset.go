// Package dataset declares the per-city configs: where the data lives, how a
// raw payload becomes records, and which filters and columns the browser
// shows for it.
package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/moritamori/machimap/internal/engine/filter"
	"github.com/moritamori/machimap/internal/model"
)

// Shape tags how a config's raw payload is encoded.
type Shape int

const (
	ShapeStructured Shape = iota // JSON, flat or grouped
	ShapeDelimited               // header-first CSV
)

// Column is one table column: a pure formatter over a record, plus whether
// the column doubles as the record's external map link.
type Column struct {
	Title string
	Width int
	Link  bool
	Value func(r model.Record) string
}

// Config is the immutable per-dataset bundle. Exactly one is active at a
// time; switching discards all records and filter state built from it.
type Config struct {
	ID     string
	Name   string
	Source string // URL or local path
	Stamp  string // "last updated" file, optional
	Shape  Shape
	Region string // prefecture-level name fed into map-link free-text queries

	Normalize func(data []byte) []model.Record

	Filters []filter.Decl
	Columns []Column

	// Map defaults, used whenever zero coordinate-bearing records are shown.
	Center orb.Point
	Zoom   float64
}

// All returns the registered configs in menu order.
func All() []Config {
	return []Config{Tokyo(), Kyoto(), Hachipay()}
}

// ByID looks up a registered config.
func ByID(id string) (Config, bool) {
	for _, c := range All() {
		if c.ID == id {
			return c, true
		}
	}
	return Config{}, false
}

// TagsDecl returns the config's multi-select declaration, if it has one.
func (c Config) TagsDecl() (filter.Decl, bool) {
	for _, d := range c.Filters {
		if d.Kind == filter.Tags {
			return d, true
		}
	}
	return filter.Decl{}, false
}

// Placeholder is rendered for absent values in table cells.
const Placeholder = "-"

func fmtNum(n model.Num, format string) string {
	if !n.Valid {
		return Placeholder
	}
	return fmt.Sprintf(format, n.Value)
}

func fmtString(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// num coerces a decoded JSON value (number, numeric string, or missing)
// into a Num.
func num(v any) model.Num {
	switch x := v.(type) {
	case float64:
		return model.NumOf(x)
	case string:
		return model.ParseNum(x)
	case json.Number:
		return model.ParseNum(x.String())
	}
	return model.Num{}
}
