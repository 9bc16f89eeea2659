package components

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

var tokyoStation = orb.Point{139.7671, 35.6812}

func TestZeroMarkersRecentersToDefaults(t *testing.T) {
	m := NewMapPanel(60, 20)
	m.SetDefaults(tokyoStation, 12)

	// Drift the viewport, then resync with nothing.
	m.SyncMarkers([]Marker{{Point: orb.Point{135.0, 34.0}}, {Point: orb.Point{136.0, 36.0}}})
	m.SyncMarkers(nil)

	c := m.ViewportCenter()
	if math.Abs(c.Lat()-tokyoStation.Lat()) > 1e-9 || math.Abs(c.Lon()-tokyoStation.Lon()) > 1e-9 {
		t.Errorf("viewport center = %v, want config default %v", c, tokyoStation)
	}
	wantHalf := 180 / math.Pow(2, 12)
	minLat, _, maxLat, _ := m.Viewport()
	if math.Abs((maxLat-minLat)/2-wantHalf) > 1e-9 {
		t.Errorf("lat half-span = %f, want %f", (maxLat-minLat)/2, wantHalf)
	}
}

func TestSingleMarkerCentersClose(t *testing.T) {
	m := NewMapPanel(60, 20)
	m.SetDefaults(tokyoStation, 12)

	pt := orb.Point{139.70, 35.658}
	m.SyncMarkers([]Marker{{Point: pt, Title: "only"}})

	c := m.ViewportCenter()
	if math.Abs(c.Lat()-pt.Lat()) > 1e-9 || math.Abs(c.Lon()-pt.Lon()) > 1e-9 {
		t.Errorf("viewport center = %v, want %v", c, pt)
	}
	wantHalf := 180 / math.Pow(2, closeZoom)
	minLat, _, maxLat, _ := m.Viewport()
	if math.Abs((maxLat-minLat)/2-wantHalf) > 1e-9 {
		t.Errorf("close zoom span = %f, want %f", (maxLat-minLat)/2, wantHalf)
	}
}

func TestManyMarkersFitBoundWithPadding(t *testing.T) {
	m := NewMapPanel(60, 20)
	m.SetDefaults(tokyoStation, 12)

	a := orb.Point{139.70, 35.60}
	b := orb.Point{139.80, 35.70}
	m.SyncMarkers([]Marker{{Point: a}, {Point: b}})

	minLat, minLng, maxLat, maxLng := m.Viewport()
	if minLat >= a.Lat() || maxLat <= b.Lat() {
		t.Errorf("lat bounds [%f,%f] must pad beyond [%f,%f]", minLat, maxLat, a.Lat(), b.Lat())
	}
	if minLng >= a.Lon() || maxLng <= b.Lon() {
		t.Errorf("lng bounds [%f,%f] must pad beyond [%f,%f]", minLng, maxLng, a.Lon(), b.Lon())
	}
}

func TestSyncClearsSelectionAndPopup(t *testing.T) {
	m := NewMapPanel(60, 20)
	m.SetDefaults(tokyoStation, 12)
	m.SyncMarkers([]Marker{{Title: "a", Point: orb.Point{139.7, 35.6}}, {Title: "b", Point: orb.Point{139.8, 35.7}}})

	m.SelectNext()
	m.TogglePopup()
	if !m.PopupOpen() || m.Selected() != 0 {
		t.Fatalf("setup failed: popup=%v selected=%d", m.PopupOpen(), m.Selected())
	}

	m.SyncMarkers([]Marker{{Title: "c", Point: orb.Point{139.7, 35.6}}})
	if m.PopupOpen() || m.Selected() != -1 {
		t.Errorf("resync must clear popup and selection, popup=%v selected=%d", m.PopupOpen(), m.Selected())
	}
}

func TestSelectionWrapsAndPopupFollows(t *testing.T) {
	m := NewMapPanel(60, 20)
	m.SetDefaults(tokyoStation, 12)
	m.SyncMarkers([]Marker{
		{Title: "a", Point: orb.Point{139.7, 35.6}},
		{Title: "b", Point: orb.Point{139.8, 35.7}},
	})

	m.SelectPrev() // from -1 wraps to an end
	if m.Selected() < 0 || m.Selected() > 1 {
		t.Fatalf("selected = %d", m.Selected())
	}
	m.TogglePopup()
	was := m.Selected()
	m.SelectNext()
	if !m.PopupOpen() {
		t.Error("popup should stay open while cycling")
	}
	if m.Selected() == was {
		t.Error("selection did not move")
	}
}

func TestViewRendersAtZeroSize(t *testing.T) {
	m := NewMapPanel(0, 0)
	m.SetDefaults(tokyoStation, 12)
	if got := m.View(); got != "" {
		t.Errorf("unsized panel must render empty, got %q", got)
	}
}
