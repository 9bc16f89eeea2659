package dataset

import (
	"strings"
	"testing"
)

func TestTokyoFlattensGroupsIntoArea(t *testing.T) {
	payload := `{"data":[
		{"area":"Shibuya","items":[
			{"name":"Café Noir","category":"Cafe","tags":["wifi"],"lat":35.66,"lng":139.70},
			{"name":"","category":"ghost"}
		]},
		{"area":"Ueno","items":[
			{"name":"Sushi Dan","category":"Sushi","lat":"bogus","lng":139.77}
		]}
	]}`
	recs := normalizeTokyo([]byte(payload))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2 (titleless row skipped)", len(recs))
	}
	if recs[0].Area != "Shibuya" || recs[1].Area != "Ueno" {
		t.Errorf("group names not injected: %q, %q", recs[0].Area, recs[1].Area)
	}
	if !recs[0].HasCoords {
		t.Error("record with finite lat/lng must have coordinates")
	}
	if recs[0].Point.Lat() != 35.66 || recs[0].Point.Lon() != 139.70 {
		t.Errorf("point = %v", recs[0].Point)
	}
	if recs[1].HasCoords {
		t.Error("non-numeric lat must leave the record coordinate-less")
	}
	if recs[1].Rating.Valid {
		t.Error("missing rating must be absent, not zero")
	}
}

func TestTokyoMalformedPayloadIsEmptyNotError(t *testing.T) {
	for _, bad := range []string{"", "not json", `{"data": 5}`, `[1,2,3]`} {
		if recs := normalizeTokyo([]byte(bad)); len(recs) != 0 {
			t.Errorf("payload %q: got %d records, want 0", bad, len(recs))
		}
	}
}

func TestKyotoMetricAndMapURL(t *testing.T) {
	payload := `[
		{"name":"Ramen Gold","category":"Ramen","price":1200,"rating":4.2,
		 "place_id":"ChIJabc","lat":35.0,"lng":135.76},
		{"name":"Tea House","category":"Cafe","address":"Gion"}
	]`
	recs := normalizeKyoto([]byte(payload))
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if !recs[0].Metric.Valid || recs[0].Metric.Value != 1200 {
		t.Errorf("price metric = %+v", recs[0].Metric)
	}
	if !strings.Contains(recs[0].MapURL, "place_id:ChIJabc") {
		t.Errorf("place id must win over free text: %q", recs[0].MapURL)
	}
	if !strings.Contains(recs[1].MapURL, "Tea%20House%20Gion") {
		t.Errorf("free-text link: %q", recs[1].MapURL)
	}
}

func TestHachipayCuratedLinkAndTags(t *testing.T) {
	csv := "show_name,parent_category,middle_category,child_category,address,tel,google_url,lat,lng\n" +
		"\"Bistro Hachi\",食事,洋食,フレンチ,渋谷1-2-3,03-0000-0000,https://maps.app.goo.gl/abc,35.658,139.70\n" +
		"Nameless Cafe,カフェ,,,渋谷2-3-4,,https://evil.example.com/maps/x,,\n" +
		",食事,,,ghost,,,\n"
	recs := normalizeHachipay([]byte(csv))
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].MapURL != "https://maps.app.goo.gl/abc" {
		t.Errorf("verified curated link must win: %q", recs[0].MapURL)
	}
	if len(recs[0].Tags) != 2 || recs[0].Tags[0] != "洋食" {
		t.Errorf("category tags = %v", recs[0].Tags)
	}
	// Unverified host falls through to the free-text query.
	if !strings.HasPrefix(recs[1].MapURL, "https://www.google.com/maps/search/") {
		t.Errorf("unverified link must be rejected: %q", recs[1].MapURL)
	}
	if recs[1].HasCoords {
		t.Error("missing lat/lng must leave HasCoords false")
	}
}

func TestRegistry(t *testing.T) {
	if len(All()) != 3 {
		t.Fatalf("expected 3 configs, got %d", len(All()))
	}
	for _, c := range All() {
		if c.Normalize == nil || len(c.Filters) == 0 || len(c.Columns) == 0 {
			t.Errorf("config %q is incomplete", c.ID)
		}
		if c.Zoom == 0 || c.Center.Lat() == 0 {
			t.Errorf("config %q lacks map defaults", c.ID)
		}
	}
	if _, ok := ByID("kyoto"); !ok {
		t.Error("ByID(kyoto) not found")
	}
	if _, ok := ByID("osaka"); ok {
		t.Error("ByID(osaka) should not resolve")
	}
}
