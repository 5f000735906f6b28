package view

import "github.com/JonMunkholm/eommap/internal/core"

// Options holds the fixed presentation settings.
type Options struct {
	Title       string
	Heading     string
	Center      core.LatLng
	Zoom        int
	MapHeight   string
	TileURL     string
	Attribution string
}

// DefaultOptions returns the stock dashboard settings.
func DefaultOptions() Options {
	return Options{
		Title:       "EOM Provider Map",
		Heading:     "Enhancing Oncology Model Providers",
		Center:      core.LatLng{Lat: DefaultCenterLat, Lng: DefaultCenterLng},
		Zoom:        DefaultZoom,
		MapHeight:   "70vh",
		TileURL:     DefaultTileURL,
		Attribution: DefaultAttribution,
	}
}

// Compose arranges an already computed summary and marker set into a Page.
// It performs no computation beyond copying values into place.
func Compose(summary core.StatsSummary, markers []core.MarkerDescriptor, opts Options) Page {
	return Page{
		Title:   opts.Title,
		Heading: opts.Heading,
		Cards: []StatCard{
			{Label: "Total Providers", Value: summary.TotalProviders, Tone: TonePrimary},
			{Label: "States Covered", Value: summary.DistinctRegions, Tone: ToneSuccess},
		},
		Map: MapWidget{
			Center:      opts.Center,
			Zoom:        opts.Zoom,
			Height:      opts.MapHeight,
			TileURL:     opts.TileURL,
			Attribution: opts.Attribution,
			Fullscreen:  TopRight,
			Scale:       BottomLeft,
			Markers:     mapMarkers(markers),
		},
		Ranking: RankedList{
			Title: "Top States",
			Items: rankedItems(summary.TopRegions),
		},
	}
}

func mapMarkers(markers []core.MarkerDescriptor) []MapMarker {
	out := make([]MapMarker, len(markers))
	for i, m := range markers {
		out[i] = MapMarker{
			Index:    m.Index,
			Position: m.Position,
			Tooltip: TooltipPanel{
				Heading:   m.Tooltip.Name,
				Location:  m.Summary(),
				Direction: "top",
				Permanent: false,
			},
		}
	}
	return out
}

func rankedItems(top []core.RegionCount) []RankedItem {
	out := make([]RankedItem, len(top))
	for i, rc := range top {
		out[i] = RankedItem{
			Rank:   i + 1,
			Region: rc.Region,
			Name:   core.RegionName(rc.Region),
			Count:  rc.Count,
		}
	}
	return out
}
