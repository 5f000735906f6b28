// Package core provides the data pipeline behind the provider map dashboard.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, the CLI, or tests without
// modification.
//
// # Pipeline
//
// The pipeline runs once at startup and is never recomputed:
//
//  1. [Load] reads the provider CSV into an immutable [ProviderTable]
//  2. [Aggregate] derives a [StatsSummary] (total, distinct regions, top 5)
//  3. [Project] turns every record into one [MarkerDescriptor]
//
// [Init] runs all three and returns an [App] value that the web layer
// shares read-only across requests.
//
//	app, err := core.Init("data/clean_eom_data.csv", core.InitOptions{TopN: 5})
//	if err != nil {
//	    // err is a *DataLoadError; errors.Is(err, core.ErrDataLoad) is true
//	}
//
// # Load Policy
//
// Loading is strict. A missing file, a missing required column, or a
// latitude/longitude that does not parse as an in-range number fails the
// whole load with a [DataLoadError] naming the line and column. Blank rows
// are skipped.
//
// # Ranking
//
// Regions are compared exactly as written (no case folding). The top-N list
// is ordered by count descending; equal counts keep the order in which each
// region first appears in the file.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference (DATA001-DATA007,
// REQ001-REQ004, RATE001, ERR000).
package core
