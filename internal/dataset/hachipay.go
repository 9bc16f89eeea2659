package dataset

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/moritamori/machimap/internal/engine/filter"
	"github.com/moritamori/machimap/internal/engine/maplink"
	"github.com/moritamori/machimap/internal/engine/source"
	"github.com/moritamori/machimap/internal/model"
)

const hachipayRegion = "東京都渋谷区"

// Hachipay is the delimited dataset. Its google_url column is an
// operator-curated deep link and outranks every derived form once verified.
// The middle/child category columns become tags so the multi-select has
// something meaningful to bite on.
func Hachipay() Config {
	return Config{
		ID:        "hachipay",
		Name:      "Hachipay Restaurants",
		Source:    "data/restaurants_geocoded.csv",
		Stamp:     "data/hachipay_last_updated.txt",
		Shape:     ShapeDelimited,
		Region:    hachipayRegion,
		Normalize: normalizeHachipay,
		Filters: []filter.Decl{
			{ID: "q", Label: "Search", Kind: filter.Search,
				Fields: []filter.Field{filter.FieldTitle, filter.FieldAddress, filter.FieldTel}},
			{ID: "category", Label: "Category", Kind: filter.Select,
				Fields: []filter.Field{filter.FieldCategory}},
			{ID: "tags", Label: "Tags", Kind: filter.Tags,
				Fields: []filter.Field{filter.FieldTags}},
		},
		Columns: []Column{
			{Title: "Name", Width: 28, Link: true, Value: func(r model.Record) string { return r.Title }},
			{Title: "Category", Width: 16, Value: func(r model.Record) string { return fmtString(r.Category) }},
			{Title: "Address", Width: 30, Value: func(r model.Record) string { return fmtString(r.Address) }},
			{Title: "Tel", Width: 14, Value: func(r model.Record) string { return fmtString(r.Tel) }},
		},
		Center: orb.Point{139.7016, 35.6580}, // Shibuya Station
		Zoom:   13,
	}
}

func normalizeHachipay(data []byte) []model.Record {
	rows, err := source.Rows(data)
	if err != nil {
		return nil
	}

	var recs []model.Record
	for _, row := range rows {
		title := row["show_name"]
		if title == "" {
			continue
		}
		var tags []string
		for _, key := range []string{"middle_category", "child_category"} {
			if v := row[key]; v != "" {
				tags = append(tags, v)
			}
		}
		r := model.Record{
			ID:       fmt.Sprintf("hachipay-%d", len(recs)),
			Title:    title,
			Category: row["parent_category"],
			Tags:     tags,
			Address:  row["address"],
			Tel:      row["tel"],
		}
		lat := model.ParseNum(row["lat"])
		lng := model.ParseNum(row["lng"])
		if lat.Valid && lng.Valid {
			r.HasCoords = true
			r.Point = orb.Point{lng.Value, lat.Value}
		}
		r.MapURL = maplink.Resolve(maplink.Input{
			KnownURL:  strings.TrimSpace(row["google_url"]),
			Title:     r.Title,
			Address:   r.Address,
			Region:    hachipayRegion,
			Point:     r.Point,
			HasCoords: r.HasCoords,
		})
		recs = append(recs, r)
	}
	return recs
}
