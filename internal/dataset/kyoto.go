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

const kyotoRegion = "京都府"

// kyotoShop is one entry of the flat Kyoto payload. Price is the dataset's
// metric and drives the max-threshold filter.
type kyotoShop struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Area        string   `json:"area"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	PlaceID     string   `json:"place_id"`
	Rating      any      `json:"rating"`
	ReviewCount any      `json:"review_count"`
	Price       any      `json:"price"`
	Lat         any      `json:"lat"`
	Lng         any      `json:"lng"`
}

func Kyoto() Config {
	return Config{
		ID:        "kyoto",
		Name:      "Kyoto Restaurants",
		Source:    "data/kyoto_shops.json",
		Stamp:     "data/kyoto_last_updated.txt",
		Shape:     ShapeStructured,
		Region:    kyotoRegion,
		Normalize: normalizeKyoto,
		Filters: []filter.Decl{
			{ID: "q", Label: "Search", Kind: filter.Search,
				Fields: []filter.Field{filter.FieldTitle, filter.FieldDescription, filter.FieldAddress}},
			{ID: "category", Label: "Category", Kind: filter.Select,
				Fields: []filter.Field{filter.FieldCategory}},
			{ID: "tags", Label: "Tags", Kind: filter.Tags,
				Fields: []filter.Field{filter.FieldTags}},
			{ID: "min_rating", Label: "Min rating", Kind: filter.MinThreshold,
				Fields: []filter.Field{filter.FieldRating}},
			{ID: "max_price", Label: "Max price", Kind: filter.MaxThreshold,
				Fields: []filter.Field{filter.FieldMetric}},
		},
		Columns: []Column{
			{Title: "Name", Width: 28, Link: true, Value: func(r model.Record) string { return r.Title }},
			{Title: "Category", Width: 16, Value: func(r model.Record) string { return fmtString(r.Category) }},
			{Title: "Rating", Width: 6, Value: func(r model.Record) string { return fmtNum(r.Rating, "%.1f") }},
			{Title: "Price", Width: 8, Value: func(r model.Record) string { return fmtNum(r.Metric, "¥%.0f") }},
			{Title: "Tags", Width: 22, Value: func(r model.Record) string { return fmtString(strings.Join(r.Tags, ", ")) }},
		},
		Center: orb.Point{135.7681, 35.0116}, // Kyoto Station
		Zoom:   12,
	}
}

func normalizeKyoto(data []byte) []model.Record {
	var shops []kyotoShop
	if err := json.Unmarshal(data, &shops); err != nil {
		return nil
	}

	var recs []model.Record
	for _, s := range shops {
		title := strings.TrimSpace(s.Name)
		if title == "" {
			continue
		}
		r := model.Record{
			ID:          fmt.Sprintf("kyoto-%d", len(recs)),
			Title:       title,
			Category:    strings.TrimSpace(s.Category),
			Area:        strings.TrimSpace(s.Area),
			Tags:        s.Tags,
			Rating:      num(s.Rating),
			Reviews:     num(s.ReviewCount),
			Metric:      num(s.Price),
			Description: s.Description,
			Address:     strings.TrimSpace(s.Address),
		}
		lat, lng := num(s.Lat), num(s.Lng)
		if lat.Valid && lng.Valid {
			r.HasCoords = true
			r.Point = orb.Point{lng.Value, lat.Value}
		}
		r.MapURL = maplink.Resolve(maplink.Input{
			PlaceID:   s.PlaceID,
			Title:     r.Title,
			Address:   r.Address,
			Area:      r.Area,
			Region:    kyotoRegion,
			Point:     r.Point,
			HasCoords: r.HasCoords,
		})
		recs = append(recs, r)
	}
	return recs
}
