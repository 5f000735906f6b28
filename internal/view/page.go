// Package view arranges computed dashboard data into a page tree.
//
// The tree is plain Go data with no dependency on an HTML or component
// library; internal/web/templates renders it.
package view

import "github.com/JonMunkholm/eommap/internal/core"

// Default map settings: continental US centroid at a country-wide zoom.
const (
	DefaultCenterLat = 39.8283
	DefaultCenterLng = -98.5795
	DefaultZoom      = 4

	DefaultTileURL     = "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`
)

// Tone selects the accent color of a stat card.
type Tone string

const (
	TonePrimary Tone = "primary"
	ToneSuccess Tone = "success"
)

// ControlPosition is a corner of the map.
type ControlPosition string

const (
	TopRight   ControlPosition = "topright"
	BottomLeft ControlPosition = "bottomleft"
)

// Page is the full dashboard tree.
type Page struct {
	Title   string
	Heading string
	Cards   []StatCard
	Map     MapWidget
	Ranking RankedList
}

// StatCard shows a single headline number.
type StatCard struct {
	Label string
	Value int
	Tone  Tone
}

// MapWidget describes the map and every marker placed on it.
type MapWidget struct {
	Center      core.LatLng
	Zoom        int
	Height      string // CSS height, e.g. "70vh"
	TileURL     string
	Attribution string // Trusted HTML supplied by configuration
	Fullscreen  ControlPosition
	Scale       ControlPosition
	Markers     []MapMarker
}

// MapMarker is a marker with its hover tooltip.
type MapMarker struct {
	Index    int          `json:"index"`
	Position core.LatLng  `json:"position"`
	Tooltip  TooltipPanel `json:"tooltip"`
}

// TooltipPanel is shown above the marker on hover and hidden afterwards.
type TooltipPanel struct {
	Heading   string `json:"heading"`
	Location  string `json:"location"`
	Direction string `json:"direction"`
	Permanent bool   `json:"permanent"`
}

// RankedList is the top-N region list.
type RankedList struct {
	Title string
	Items []RankedItem
}

// RankedItem is one row of the ranked list.
type RankedItem struct {
	Rank   int
	Region string
	Name   string // Full region name when known
	Count  int
}
