package core

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// InitOptions controls the one-time startup pipeline.
type InitOptions struct {
	TopN int // Regions in the ranked list (<= 0 means DefaultTopN)
}

// App is the immutable application state built once at startup.
// Nothing mutates it after Init returns; it is safe to share between
// request goroutines.
type App struct {
	Table     *ProviderTable
	Summary   StatsSummary
	Markers   []MarkerDescriptor
	DatasetID uuid.UUID // Stable identifier derived from the file contents
	LoadedAt  time.Time
	LoadTime  time.Duration
}

// Init loads the provider file and derives the summary and markers.
// Any error is a *DataLoadError.
func Init(path string, opts InitOptions) (*App, error) {
	start := time.Now()

	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	table, err := parseTable(data, path)
	if err != nil {
		return nil, err
	}

	app := &App{
		Table:     table,
		Summary:   AggregateTopN(table, opts.TopN),
		Markers:   Project(table),
		DatasetID: DatasetID(data),
		LoadedAt:  start,
		LoadTime:  time.Since(start),
	}

	slog.Info("provider data loaded",
		"path", path,
		"providers", app.Summary.TotalProviders,
		"regions", app.Summary.DistinctRegions,
		"dataset_id", app.DatasetID,
		"duration_ms", app.LoadTime.Milliseconds(),
	)

	return app, nil
}

// DatasetID derives a deterministic UUID (v5) from raw file contents.
// The same bytes always produce the same ID.
func DatasetID(data []byte) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, data)
}
