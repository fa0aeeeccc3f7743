// Command flightprep converts yearly directories of monthly flight
// on-time performance CSV extracts into filtered Parquet files.
//
// With no flags it converts <cwd>/2023 and <cwd>/2024 into
// <cwd>/processed/<year>, one file per month.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"flightprep/internal/config"
	"flightprep/internal/convert"
	"flightprep/internal/metrics"
	"flightprep/internal/metrics/datadog"
	"flightprep/internal/metrics/prompush"
	"flightprep/internal/report"
	"flightprep/internal/storage"

	// register all ledger backends with the storage factory.
	_ "flightprep/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run is main without the process boundary. It returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("flightprep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath        = fs.String("config", "", "JSON or YAML config path (empty uses the built-in defaults)")
		root           = fs.String("root", "", "directory holding the year folders (overrides config root)")
		validate       = fs.Bool("validate", false, "validate the configuration and exit")
		verbose        = fs.Bool("v", false, "enable verbose logs")
		metricsBackend = fs.String("metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides config and METRICS_BACKEND)")
		pushGatewayURL = fs.String("pushgateway-url", "", "Pushgateway base URL (overrides config and PUSHGATEWAY_URL)")
		dogStatsDAddr  = fs.String("dogstatsd-addr", "", "DogStatsD address (overrides config and DOGSTATSD_ADDR)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log.SetOutput(stderr)
	if *verbose {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintf(stderr, "flightprep: %v\n", err)
			return 1
		}
	}
	if *root != "" {
		cfg.Root = *root
	}
	if *metricsBackend != "" {
		cfg.Metrics.Backend = *metricsBackend
	}
	if *pushGatewayURL != "" {
		cfg.Metrics.PushgatewayURL = *pushGatewayURL
	}
	if *dogStatsDAddr != "" {
		cfg.Metrics.DogStatsDAddr = *dogStatsDAddr
	}
	cfg.ApplyEnv(getenv)

	issues := config.Validate(cfg)
	if k := cfg.Report.Kind; k != "" && !slices.Contains(storage.ListKinds(), k) {
		issues = append(issues, config.Issue{
			Severity: config.SeverityError,
			Path:     "report.kind",
			Message:  fmt.Sprintf("no ledger backend %q (available: %s)", k, strings.Join(storage.ListKinds(), ", ")),
		})
	}
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "flightprep: configuration is invalid")
		return 1
	}
	if *validate {
		fmt.Fprintln(stdout, "configuration is valid")
		return 0
	}

	if flush := setupMetrics(cfg); flush != nil {
		defer flush()
	}

	var recorder report.Recorder
	if cfg.Report.Kind != "" {
		ledger, err := report.Open(ctx, cfg.Report.Kind, cfg.Report.DSN, cfg.ReportTable())
		if err != nil {
			fmt.Fprintf(stderr, "flightprep: %v\n", err)
			return 1
		}
		defer ledger.Close()
		log.WithFields(log.Fields{"kind": cfg.Report.Kind, "table": cfg.ReportTable(), "run_id": ledger.RunID()}).
			Info("run ledger enabled")
		recorder = ledger
	}

	jobs := make([]convert.Job, 0, len(cfg.Years))
	for _, j := range cfg.Jobs() {
		jobs = append(jobs, convert.Job{Year: j.Year, InputDir: j.InputDir, OutputDir: j.OutputDir})
	}

	c := convert.New(convert.Options{
		Job:             cfg.Job,
		Projection:      cfg.Projection,
		Compression:     cfg.Output.Compression,
		Engine:          cfg.EngineOptions(),
		Preflight:       cfg.Output.Preflight,
		Verify:          cfg.Output.Verify,
		ContinueOnError: cfg.OnError == config.OnErrorContinue,
		Out:             stdout,
		Recorder:        recorder,
	})

	if _, err := c.Run(ctx, jobs); err != nil {
		var mie *convert.MissingInputError
		if errors.As(err, &mie) {
			fmt.Fprintln(stderr, mie.Error())
		} else {
			fmt.Fprintf(stderr, "flightprep: %v\n", err)
		}
		return 1
	}
	return 0
}

// setupMetrics installs the configured backend and returns its flush
// function, or nil when metrics stay disabled.
func setupMetrics(cfg config.Config) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case "", "none":
		log.Infof("metrics: disabled (backend=%q)", cfg.Metrics.Backend)
		return nil
	case "pushgateway":
		url := cfg.Metrics.PushgatewayURL
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(cfg.Job, url)
		if err == nil {
			log.WithFields(log.Fields{"url": url, "job": cfg.Job}).Info("metrics: pushgateway backend")
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DogStatsDAddr,
			Namespace:  "flightprep.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err == nil {
			log.WithField("addr", cfg.Metrics.DogStatsDAddr).Info("metrics: datadog backend")
		}
	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
		return nil
	}
	if err != nil {
		log.Warnf("metrics: %v; using nop", err)
		return nil
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warnf("metrics: flush error: %v", err)
		}
	}
}
