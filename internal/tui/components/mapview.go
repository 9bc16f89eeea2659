package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"github.com/moritamori/machimap/internal/tui/styles"
)

// closeZoom is the fixed zoom used when exactly one marker is plotted.
const closeZoom = 16

// Marker is one plotted record: a coordinate, a title, and the lines shown
// in its info popup.
type Marker struct {
	ID    string
	Point orb.Point
	Title string
	Info  []string
}

// MapPanel renders markers as a Braille scatter plot. Every SyncMarkers call
// is a full resync: previous markers and any open popup are discarded before
// the new set is placed and the viewport policy applied.
type MapPanel struct {
	width   int
	height  int
	markers []Marker

	selected int // marker index, -1 if none
	popup    int // marker index with open popup, -1 if closed

	defCenter orb.Point
	defZoom   float64

	// Viewport bounds
	minLat, maxLat float64
	minLng, maxLng float64
	// Base bounds (zoom/pan reference)
	basMinLat, basMaxLat float64
	basMinLng, basMaxLng float64
	zoomLevel            float64 // 1.0 = no zoom, >1 = zoomed in
	panLat, panLng       float64 // pan offset in degrees
}

func NewMapPanel(width, height int) MapPanel {
	return MapPanel{
		width:     width,
		height:    height,
		selected:  -1,
		popup:     -1,
		zoomLevel: 1.0,
	}
}

func (m *MapPanel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetDefaults installs a config's center/zoom and recenters to it, so a
// config switch never leaves a stale viewport behind.
func (m *MapPanel) SetDefaults(center orb.Point, zoom float64) {
	m.defCenter = center
	m.defZoom = zoom
	m.centerOn(center, zoom)
}

// SyncMarkers replaces every marker with the incoming set and reapplies the
// viewport policy: zero markers recenter to the config defaults, one marker
// centers close on it, two or more fit their bounding box with padding.
func (m *MapPanel) SyncMarkers(markers []Marker) {
	m.markers = markers
	m.selected = -1
	m.popup = -1
	m.panLat, m.panLng = 0, 0
	m.zoomLevel = 1.0

	switch len(markers) {
	case 0:
		m.centerOn(m.defCenter, m.defZoom)
	case 1:
		m.centerOn(markers[0].Point, closeZoom)
	default:
		pts := make(orb.MultiPoint, len(markers))
		for i, mk := range markers {
			pts[i] = mk.Point
		}
		m.fitBound(pts.Bound())
	}
}

func (m *MapPanel) Markers() []Marker { return m.markers }

func (m *MapPanel) Selected() int { return m.selected }

// SelectNext and SelectPrev cycle marker selection; an open popup follows.
func (m *MapPanel) SelectNext() { m.selectStep(1) }
func (m *MapPanel) SelectPrev() { m.selectStep(-1) }

func (m *MapPanel) selectStep(d int) {
	if len(m.markers) == 0 {
		return
	}
	m.selected = ((m.selected+d)%len(m.markers) + len(m.markers)) % len(m.markers)
	if m.popup >= 0 {
		m.popup = m.selected
	}
}

// TogglePopup opens the info popup on the selected marker, or closes it.
// There is a single shared popup; opening it elsewhere moves it.
func (m *MapPanel) TogglePopup() {
	if m.popup >= 0 {
		m.popup = -1
		return
	}
	if m.selected >= 0 && m.selected < len(m.markers) {
		m.popup = m.selected
	}
}

func (m *MapPanel) PopupOpen() bool { return m.popup >= 0 }

// Viewport returns the current bounds.
func (m *MapPanel) Viewport() (minLat, minLng, maxLat, maxLng float64) {
	return m.minLat, m.minLng, m.maxLat, m.maxLng
}

// ViewportCenter returns the viewport midpoint as {lng, lat}.
func (m *MapPanel) ViewportCenter() orb.Point {
	return orb.Point{(m.minLng + m.maxLng) / 2, (m.minLat + m.maxLat) / 2}
}

func (m *MapPanel) ZoomIn() {
	m.zoomLevel *= 1.5
	if m.zoomLevel > 20 {
		m.zoomLevel = 20
	}
	m.applyZoom()
}

func (m *MapPanel) ZoomOut() {
	m.zoomLevel /= 1.5
	if m.zoomLevel < 0.5 {
		m.zoomLevel = 0.5
	}
	m.applyZoom()
}

func (m *MapPanel) Pan(dLat, dLng float64) {
	latRange := m.basMaxLat - m.basMinLat
	lngRange := m.basMaxLng - m.basMinLng
	m.panLat += dLat * latRange * 0.1 / m.zoomLevel
	m.panLng += dLng * lngRange * 0.1 / m.zoomLevel
	m.applyZoom()
}

// centerOn sets base bounds from a center and a web-map-style zoom level
// (latitude span halves per level).
func (m *MapPanel) centerOn(center orb.Point, zoom float64) {
	halfLat := 180 / math.Pow(2, zoom)
	// renderGrid corrects aspect; keep the lng span proportional.
	halfLng := halfLat * 2
	m.basMinLat = center.Lat() - halfLat
	m.basMaxLat = center.Lat() + halfLat
	m.basMinLng = center.Lon() - halfLng
	m.basMaxLng = center.Lon() + halfLng
	m.applyZoom()
}

// fitBound sets base bounds to a bounding box plus padding.
func (m *MapPanel) fitBound(b orb.Bound) {
	m.basMinLat = b.Min.Lat()
	m.basMaxLat = b.Max.Lat()
	m.basMinLng = b.Min.Lon()
	m.basMaxLng = b.Max.Lon()

	latPad := (m.basMaxLat - m.basMinLat) * 0.1
	lngPad := (m.basMaxLng - m.basMinLng) * 0.1
	if latPad == 0 {
		latPad = 0.005
	}
	if lngPad == 0 {
		lngPad = 0.005
	}
	m.basMinLat -= latPad
	m.basMaxLat += latPad
	m.basMinLng -= lngPad
	m.basMaxLng += lngPad
	m.applyZoom()
}

func (m *MapPanel) applyZoom() {
	centerLat := (m.basMinLat+m.basMaxLat)/2 + m.panLat
	centerLng := (m.basMinLng+m.basMaxLng)/2 + m.panLng
	halfLat := (m.basMaxLat - m.basMinLat) / 2 / m.zoomLevel
	halfLng := (m.basMaxLng - m.basMinLng) / 2 / m.zoomLevel
	m.minLat = centerLat - halfLat
	m.maxLat = centerLat + halfLat
	m.minLng = centerLng - halfLng
	m.maxLng = centerLng + halfLng
}

// Braille character encoding:
// Each braille char is a 2x4 dot grid.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
//
// Unicode: 0x2800 + sum of raised dot bits
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

func (m MapPanel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	grid := m.renderGrid()
	if m.popup < 0 || m.popup >= len(m.markers) {
		return grid
	}
	return grid + "\n" + m.renderPopup(m.markers[m.popup])
}

func (m MapPanel) renderGrid() string {
	cols := m.width
	rows := m.height
	dotW := cols * 2
	dotH := rows * 4

	latRange := m.maxLat - m.minLat
	lngRange := m.maxLng - m.minLng
	if latRange <= 0 || lngRange <= 0 {
		return strings.TrimRight(strings.Repeat(strings.Repeat(" ", cols)+"\n", rows), "\n")
	}

	// Aspect ratio correction: 1° lng is shorter than 1° lat away from the
	// equator; braille dots come out roughly square on screen.
	avgLat := (m.minLat + m.maxLat) / 2
	cosLat := math.Cos(avgLat * math.Pi / 180)
	geoW := lngRange * cosLat
	geoH := latRange

	geoAspect := geoW / geoH
	dotAspect := float64(dotW) / float64(dotH)

	effectiveW, effectiveH := dotW, dotH
	offsetX, offsetY := 0, 0
	if geoAspect < dotAspect {
		effectiveW = int(float64(dotH) * geoAspect)
		if effectiveW < 4 {
			effectiveW = 4
		}
		offsetX = (dotW - effectiveW) / 2
	} else {
		effectiveH = int(float64(dotW) / geoAspect)
		if effectiveH < 4 {
			effectiveH = 4
		}
		offsetY = (dotH - effectiveH) / 2
	}

	markerGrid := make([][]bool, dotH)
	selGrid := make([][]bool, dotH)
	for i := range markerGrid {
		markerGrid[i] = make([]bool, dotW)
		selGrid[i] = make([]bool, dotW)
	}

	toDot := func(lat, lng float64) (int, int) {
		x := offsetX + int((lng-m.minLng)/lngRange*float64(effectiveW-1))
		y := offsetY + int((m.maxLat-lat)/latRange*float64(effectiveH-1))
		return x, y
	}

	for i, mk := range m.markers {
		x, y := toDot(mk.Point.Lat(), mk.Point.Lon())
		if x < 0 || x >= dotW || y < 0 || y >= dotH {
			continue
		}
		if i == m.selected {
			// Selected marker gets a fat 2x2 dot so it stands out.
			for _, d := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
				yy, xx := y+d[1], x+d[0]
				if yy < dotH && xx < dotW {
					selGrid[yy][xx] = true
				}
			}
		} else {
			markerGrid[y][x] = true
		}
	}

	markerStyle := lipgloss.NewStyle().Foreground(styles.Success)
	selStyle := lipgloss.NewStyle().Foreground(styles.Warning)

	dotPositions := [8][2]int{
		{0, 0}, {1, 0}, {2, 0}, {0, 1},
		{1, 1}, {2, 1}, {3, 0}, {3, 1},
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var markerVal rune = 0x2800
			var selVal rune = 0x2800

			for dot := 0; dot < 8; dot++ {
				dy := row*4 + dotPositions[dot][0]
				dx := col*2 + dotPositions[dot][1]
				if dy < dotH && dx < dotW {
					if markerGrid[dy][dx] {
						markerVal |= brailleDots[dot]
					}
					if selGrid[dy][dx] {
						selVal |= brailleDots[dot]
					}
				}
			}

			if selVal != 0x2800 {
				sb.WriteString(selStyle.Render(string(selVal)))
			} else if markerVal != 0x2800 {
				sb.WriteString(markerStyle.Render(string(markerVal)))
			} else {
				sb.WriteRune(' ')
			}
		}
		if row < rows-1 {
			sb.WriteRune('\n')
		}
	}

	return sb.String()
}

func (m MapPanel) renderPopup(mk Marker) string {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Text).Render(truncateTo(mk.Title, w)))
	for _, line := range mk.Info {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(truncateTo(line, w)))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Warning).
		Padding(0, 1).
		Render(sb.String())
}

func truncateTo(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
