// Package templates renders the dashboard page tree to HTML with templ
// components. Edit the .templ files and run `templ generate`.
package templates

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/eommap/internal/view"
)

// Leaflet is loaded from the public CDN; the CSP in internal/web allows it.
const (
	LeafletCSS = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
	LeafletJS  = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
)

// MarkersElementID is the id of the JSON block static/map.js reads.
const MarkersElementID = "markers-data"

var printer = message.NewPrinter(language.English)

// FormatCount renders a count with thousands separators, e.g. 12,345.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// markerList never returns nil so the payload is always a JSON array.
func markerList(m view.MapWidget) []view.MapMarker {
	if m.Markers == nil {
		return []view.MapMarker{}
	}
	return m.Markers
}
