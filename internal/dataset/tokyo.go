package dataset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/moritamori/machimap/internal/engine/filter"
	"github.com/moritamori/machimap/internal/engine/maplink"
	"github.com/moritamori/machimap/internal/model"
)

const tokyoRegion = "東京都"

// tokyoPayload is grouped by locality; each group's name is injected into
// its children's Area.
type tokyoPayload struct {
	Data []struct {
		Area  string      `json:"area"`
		Items []tokyoShop `json:"items"`
	} `json:"data"`
}

type tokyoShop struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	PlaceID     string   `json:"place_id"`
	MapURL      string   `json:"map_url"`
	Rating      any      `json:"rating"`
	ReviewCount any      `json:"review_count"`
	Lat         any      `json:"lat"`
	Lng         any      `json:"lng"`
}

func Tokyo() Config {
	return Config{
		ID:        "tokyo",
		Name:      "Tokyo Shops",
		Source:    "data/tokyo_shops_geocoded.json",
		Stamp:     "data/tokyo_last_updated.txt",
		Shape:     ShapeStructured,
		Region:    tokyoRegion,
		Normalize: normalizeTokyo,
		Filters: []filter.Decl{
			{ID: "q", Label: "Search", Kind: filter.Search,
				Fields: []filter.Field{filter.FieldTitle, filter.FieldDescription, filter.FieldAddress}},
			{ID: "category", Label: "Category", Kind: filter.Select,
				Fields: []filter.Field{filter.FieldCategory}},
			{ID: "area", Label: "Area", Kind: filter.Select,
				Fields: []filter.Field{filter.FieldArea}},
			{ID: "tags", Label: "Tags", Kind: filter.Tags,
				Fields: []filter.Field{filter.FieldTags}},
			{ID: "min_rating", Label: "Min rating", Kind: filter.MinThreshold,
				Fields: []filter.Field{filter.FieldRating}},
		},
		Columns: []Column{
			{Title: "Name", Width: 28, Link: true, Value: func(r model.Record) string { return r.Title }},
			{Title: "Category", Width: 16, Value: func(r model.Record) string { return fmtString(r.Category) }},
			{Title: "Area", Width: 12, Value: func(r model.Record) string { return fmtString(r.Area) }},
			{Title: "Rating", Width: 6, Value: func(r model.Record) string { return fmtNum(r.Rating, "%.1f") }},
			{Title: "Tags", Width: 22, Value: func(r model.Record) string { return fmtString(strings.Join(r.Tags, ", ")) }},
		},
		Center: orb.Point{139.7671, 35.6812}, // Tokyo Station
		Zoom:   12,
	}
}

func normalizeTokyo(data []byte) []model.Record {
	var p tokyoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}

	var recs []model.Record
	for _, group := range p.Data {
		for _, s := range group.Items {
			title := strings.TrimSpace(s.Name)
			if title == "" {
				continue
			}
			r := model.Record{
				ID:          fmt.Sprintf("tokyo-%d", len(recs)),
				Title:       title,
				Category:    strings.TrimSpace(s.Category),
				Area:        strings.TrimSpace(group.Area),
				Tags:        s.Tags,
				Rating:      num(s.Rating),
				Reviews:     num(s.ReviewCount),
				Description: s.Description,
				Address:     strings.TrimSpace(s.Address),
			}
			lat, lng := num(s.Lat), num(s.Lng)
			if lat.Valid && lng.Valid {
				r.HasCoords = true
				r.Point = orb.Point{lng.Value, lat.Value}
			}
			r.MapURL = maplink.Resolve(maplink.Input{
				KnownURL:  s.MapURL,
				PlaceID:   s.PlaceID,
				Title:     r.Title,
				Address:   r.Address,
				Area:      r.Area,
				Region:    tokyoRegion,
				Point:     r.Point,
				HasCoords: r.HasCoords,
			})
			recs = append(recs, r)
		}
	}
	return recs
}
