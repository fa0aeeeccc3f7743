// Package config provides configuration models and helpers for flightprep.
//
// This file adds a lightweight linter for Config values. It performs static
// checks and returns a list of issues (errors and warnings) that callers can
// surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"flightprep/internal/engine"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "output.compression",
// "projection.filter[1].op"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of c. It does not mutate c.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and the run ledger will carry an empty job label",
		})
	}
	issues = append(issues, validateYears(c.Years)...)
	issues = append(issues, validateProjection(c)...)
	issues = append(issues, validateOutput(c.Output)...)
	issues = append(issues, validateOnError(c.OnError)...)
	issues = append(issues, validateEngine(c.Engine)...)
	issues = append(issues, validateReport(c.Report)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	return issues
}

func validateYears(ys []Year) []Issue {
	var issues []Issue
	if len(ys) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "years",
			Message:  "at least one year is required",
		})
	}

	seen := map[string]int{}
	for i, y := range ys {
		path := fmt.Sprintf("years[%d].year", i)
		if strings.TrimSpace(y.Year) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: "year must not be empty"})
			continue
		}
		if strings.ContainsAny(y.Year, `*?[]\/_`) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("year %q contains a path separator, '_' or a glob character", y.Year),
			})
		}
		if prev, dup := seen[y.Year]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("year %q repeats years[%d]; its files will be converted twice", y.Year, prev),
			})
		} else {
			seen[y.Year] = i
		}
	}
	return issues
}

func validateProjection(c Config) []Issue {
	if err := c.Projection.Validate(); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "projection",
			Message:  err.Error(),
		}}
	}
	return nil
}

func validateOutput(o Output) []Issue {
	var issues []Issue
	codec := strings.ToLower(strings.TrimSpace(o.Compression))
	if codec == "" {
		return issues
	}
	if _, ok := engine.Compressions[codec]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.compression",
			Message:  fmt.Sprintf("unknown compression %q", o.Compression),
		})
	} else if codec == "uncompressed" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output.compression",
			Message:  "output files will not be compressed",
		})
	}
	return issues
}

func validateOnError(o OnError) []Issue {
	switch o {
	case "", OnErrorAbort, OnErrorContinue:
		return nil
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "on_error",
			Message:  fmt.Sprintf("on_error must be %q or %q, got %q", OnErrorAbort, OnErrorContinue, o),
		}}
	}
}

func validateEngine(e Engine) []Issue {
	if e.Threads < 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "engine.threads",
			Message:  "threads must not be negative",
		}}
	}
	return nil
}

func validateReport(r Report) []Issue {
	var issues []Issue
	if strings.TrimSpace(r.Kind) == "" {
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[r.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "report.kind",
			Message:  fmt.Sprintf("unknown report kind %q; ensure a matching backend is registered", r.Kind),
		})
	}
	if strings.TrimSpace(r.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.dsn",
			Message:  "report.dsn must not be empty when report.kind is set",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
	case "datadog":
		if strings.TrimSpace(m.DogStatsDAddr) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.dogstatsd_addr",
				Message:  "datadog backend requires dogstatsd_addr",
			}}
		}
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		}}
	}
	return nil
}
