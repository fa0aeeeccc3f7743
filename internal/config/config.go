// Package config defines the configuration model for flightprep.
//
// The zero-flag run needs no file at all: Default returns the fixed setup
// (years 2023 and 2024 under the working directory, the flight-delay
// projection, Snappy-compressed Parquet). A JSON or YAML file may override
// any part of it; field names are the same in both formats.
//
// Example (trimmed):
//
//	{
//	  "root": "/data/bts",
//	  "years": [ { "year": "2023" }, { "year": "2024" } ],
//	  "output": { "compression": "zstd", "verify": true },
//	  "on_error": "continue",
//	  "report": { "kind": "sqlite", "dsn": "runs.db" }
//	}
package config

import (
	"path/filepath"

	"flightprep/internal/dataset"
	"flightprep/internal/engine"
)

// OnError selects how the converter reacts to a per-file failure.
type OnError string

const (
	// OnErrorAbort stops the whole run at the first failed file.
	OnErrorAbort OnError = "abort"
	// OnErrorContinue records the failure and moves on to the next file.
	OnErrorContinue OnError = "continue"
)

// Config is the top-level configuration object.
type Config struct {
	// Job names the run in metrics and the run ledger.
	Job string `json:"job" yaml:"job"`

	// Root anchors relative year directories. Empty means the working directory.
	Root string `json:"root" yaml:"root"`

	// Years are processed sequentially, in order.
	Years []Year `json:"years" yaml:"years"`

	Projection dataset.Projection `json:"projection" yaml:"projection"`
	Output     Output             `json:"output" yaml:"output"`
	OnError    OnError            `json:"on_error" yaml:"on_error"`
	Engine     Engine             `json:"engine" yaml:"engine"`
	Report     Report             `json:"report" yaml:"report"`
	Metrics    Metrics            `json:"metrics" yaml:"metrics"`
}

// Year maps a dataset year to its input and output directories. Empty
// directories default to "<root>/<year>" and "<root>/processed/<year>".
type Year struct {
	Year      string `json:"year" yaml:"year"`
	InputDir  string `json:"input_dir" yaml:"input_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// Output controls how converted files are written and checked.
type Output struct {
	// Compression is the Parquet codec: snappy, zstd, gzip, lz4, brotli or
	// uncompressed.
	Compression string `json:"compression" yaml:"compression"`

	// Verify reads every written file back and checks columns and row count.
	Verify bool `json:"verify" yaml:"verify"`

	// Preflight checks each input header for the projection's columns before
	// the engine scans the file.
	Preflight bool `json:"preflight" yaml:"preflight"`
}

// Engine tunes the per-file DuckDB session.
type Engine struct {
	Threads     int    `json:"threads" yaml:"threads"`
	MemoryLimit string `json:"memory_limit" yaml:"memory_limit"`
}

// Report configures the optional run ledger. Empty Kind disables it.
type Report struct {
	// Kind selects the storage backend: sqlite, postgres, mssql or mysql.
	Kind  string `json:"kind" yaml:"kind"`
	DSN   string `json:"dsn" yaml:"dsn"`
	Table string `json:"table" yaml:"table"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is none, pushgateway or datadog.
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DogStatsDAddr  string `json:"dogstatsd_addr" yaml:"dogstatsd_addr"`
}

// DefaultTable is the run ledger table when Report.Table is empty.
const DefaultTable = "conversion_runs"

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Job:        "flightprep",
		Years:      []Year{{Year: "2023"}, {Year: "2024"}},
		Projection: dataset.FlightDelay(),
		Output: Output{
			Compression: "snappy",
			Verify:      true,
			Preflight:   true,
		},
		OnError: OnErrorAbort,
		Metrics: Metrics{Backend: "none"},
	}
}

// Job is a resolved (year, input dir, output dir) triple.
type Job struct {
	Year      string
	InputDir  string
	OutputDir string
}

// Jobs resolves Years against Root.
func (c Config) Jobs() []Job {
	root := c.Root
	if root == "" {
		root = "."
	}
	jobs := make([]Job, 0, len(c.Years))
	for _, y := range c.Years {
		in := y.InputDir
		if in == "" {
			in = y.Year
		}
		out := y.OutputDir
		if out == "" {
			out = filepath.Join("processed", y.Year)
		}
		jobs = append(jobs, Job{
			Year:      y.Year,
			InputDir:  resolve(root, in),
			OutputDir: resolve(root, out),
		})
	}
	return jobs
}

// ReportTable returns the ledger table name with its default applied.
func (c Config) ReportTable() string {
	if c.Report.Table == "" {
		return DefaultTable
	}
	return c.Report.Table
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// EngineOptions converts the engine section for engine.WithSession.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{Threads: c.Engine.Threads, MemoryLimit: c.Engine.MemoryLimit}
}
