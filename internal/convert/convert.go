// Package convert turns yearly directories of monthly on-time performance
// CSV extracts into one filtered, column-projected Parquet file per month.
//
// Files are processed strictly one after another. Each file gets its own
// in-memory engine session, opened right before its query and released right
// after, so peak memory is bounded by a single file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"flightprep/internal/dataset"
	"flightprep/internal/datasource/file"
	"flightprep/internal/engine"
	"flightprep/internal/metrics"
	"flightprep/internal/probe"
	"flightprep/internal/report"
	"flightprep/internal/verify"
)

// Job is one year's input and output directory.
type Job struct {
	Year      string
	InputDir  string
	OutputDir string
}

// Options configure a Converter. The zero value of every optional field
// keeps the fixed behavior: snappy, no preflight, no verification, abort on
// the first failure.
type Options struct {
	// Job labels metrics and ledger rows.
	Job         string
	Projection  dataset.Projection
	Compression string
	Engine      engine.Options
	Preflight   bool
	Verify      bool
	// ContinueOnError collects per-file failures instead of stopping.
	ContinueOnError bool
	// Out receives the progress lines; nil means os.Stdout.
	Out io.Writer
	// Recorder receives one ledger row per processed file; nil disables it.
	Recorder report.Recorder
}

// copier is the part of an engine session the converter needs.
type copier interface {
	CopyToParquet(ctx context.Context, src, dst string, p dataset.Projection, compression string) (int64, error)
}

// sessionFunc scopes one engine session around fn.
type sessionFunc func(ctx context.Context, opts engine.Options, fn func(copier) error) error

func engineSession(ctx context.Context, opts engine.Options, fn func(copier) error) error {
	return engine.WithSession(ctx, opts, func(s *engine.Session) error { return fn(s) })
}

// Converter runs conversion jobs.
type Converter struct {
	opts        Options
	out         io.Writer
	openSession sessionFunc
}

// New returns a Converter for o.
func New(o Options) *Converter {
	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	if o.Compression == "" {
		o.Compression = engine.DefaultCompression
	}
	return &Converter{opts: o, out: out, openSession: engineSession}
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Source   string
	Output   string
	Rows     int64
	Bytes    int64
	Checksum string
	Elapsed  time.Duration
	Err      error
}

// YearStats summarizes ConvertYear.
type YearStats struct {
	Year      string
	OutputDir string
	Files     []FileResult
	Rows      int64
	Bytes     int64
	Failed    int
	Elapsed   time.Duration
}

// RunStats summarizes Run.
type RunStats struct {
	Years   []YearStats
	Files   int
	Failed  int
	Rows    int64
	Bytes   int64
	Elapsed time.Duration
}

// Run creates every job's output directory, then converts the jobs in order.
//
// A MissingInputError, a context error or (in abort mode) the first
// FileError ends the run. In continue mode per-file failures from all years
// are returned together as one *BatchError after the last job.
func (c *Converter) Run(ctx context.Context, jobs []Job) (RunStats, error) {
	start := time.Now()
	var rs RunStats
	for _, j := range jobs {
		if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
			return rs, fmt.Errorf("create output dir %s: %w", j.OutputDir, err)
		}
	}

	var failures []*FileError
	for _, j := range jobs {
		ys, err := c.ConvertYear(ctx, j)
		rs.add(ys)
		rs.Elapsed = time.Since(start)

		var be *BatchError
		switch {
		case err == nil:
		case errors.As(err, &be) && c.opts.ContinueOnError:
			failures = append(failures, be.Failures...)
		default:
			return rs, err
		}
	}

	log.WithFields(log.Fields{
		"files":   rs.Files,
		"failed":  rs.Failed,
		"rows":    rs.Rows,
		"bytes":   humanize.Bytes(uint64(rs.Bytes)),
		"elapsed": rs.Elapsed.Truncate(time.Millisecond),
	}).Info("run complete")

	if len(failures) > 0 {
		return rs, &BatchError{Failures: failures}
	}
	return rs, nil
}

func (rs *RunStats) add(ys YearStats) {
	rs.Years = append(rs.Years, ys)
	rs.Files += len(ys.Files)
	rs.Failed += ys.Failed
	rs.Rows += ys.Rows
	rs.Bytes += ys.Bytes
}

// ConvertYear converts every "{year}_*.csv" in j.InputDir, in filename order,
// into j.OutputDir. The output directory must already exist.
func (c *Converter) ConvertYear(ctx context.Context, j Job) (YearStats, error) {
	start := time.Now()
	ys := YearStats{Year: j.Year, OutputDir: j.OutputDir}

	files, err := file.Discover(j.InputDir, j.Year)
	if err != nil {
		return ys, err
	}
	if len(files) == 0 {
		return ys, &MissingInputError{Dir: j.InputDir}
	}
	log.WithFields(log.Fields{"year": j.Year, "files": len(files)}).Debug("discovered inputs")

	var failures []*FileError
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			ys.Elapsed = time.Since(start)
			return ys, err
		}

		res := c.convertFile(ctx, j, src)
		ys.Files = append(ys.Files, res)
		ys.Rows += res.Rows
		ys.Bytes += res.Bytes
		if res.Err == nil {
			continue
		}

		ys.Failed++
		if ctx.Err() != nil {
			ys.Elapsed = time.Since(start)
			return ys, ctx.Err()
		}
		fe := &FileError{Source: res.Source, Output: res.Output, Err: res.Err}
		if !c.opts.ContinueOnError {
			ys.Elapsed = time.Since(start)
			return ys, fe
		}
		log.WithFields(log.Fields{"year": j.Year, "file": filepath.Base(src)}).Warnf("skipping file: %v", res.Err)
		failures = append(failures, fe)
	}

	fmt.Fprintf(c.out, "Done writing %s parquet files to %s\n", j.Year, j.OutputDir)
	ys.Elapsed = time.Since(start)

	if len(failures) > 0 {
		return ys, &BatchError{Failures: failures}
	}
	return ys, nil
}

// convertFile runs preflight, the engine query and verification for src. On
// failure any output written for src is removed.
func (c *Converter) convertFile(ctx context.Context, j Job, src string) FileResult {
	start := time.Now()
	res := FileResult{Source: src}

	dst, err := file.OutputPath(j.OutputDir, j.Year, src, "parquet")
	if err != nil {
		res.Err = err
		c.finish(ctx, j, &res, start)
		return res
	}
	res.Output = dst

	fmt.Fprintf(c.out, "Converting %s -> %s\n", filepath.Base(src), filepath.Base(dst))

	prior, _ := os.Stat(dst)
	wrote, err := c.process(ctx, j, &res)
	if err != nil {
		res.Err = err
		res.Rows, res.Bytes, res.Checksum = 0, 0, ""
		if wrote && replaced(prior, dst) {
			if rmErr := os.Remove(dst); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log.WithField("file", dst).Warnf("remove partial output: %v", rmErr)
			}
		}
	}
	c.finish(ctx, j, &res, start)
	return res
}

// process reports wrote=true once the COPY has been issued, so the caller
// knows whether a failure may have left output behind.
func (c *Converter) process(ctx context.Context, j Job, res *FileResult) (wrote bool, err error) {
	if c.opts.Preflight {
		t := time.Now()
		err := probe.Preflight(res.Source, c.opts.Projection)
		metrics.RecordStep(c.opts.Job, "preflight", err, time.Since(t))
		if err != nil {
			return false, err
		}
	}

	t := time.Now()
	err = c.openSession(ctx, c.opts.Engine, func(s copier) error {
		wrote = true
		n, err := s.CopyToParquet(ctx, res.Source, res.Output, c.opts.Projection, c.opts.Compression)
		res.Rows = n
		return err
	})
	metrics.RecordStep(c.opts.Job, "convert", err, time.Since(t))
	if err != nil {
		return wrote, err
	}

	if !c.opts.Verify {
		st, err := os.Stat(res.Output)
		if err != nil {
			return true, fmt.Errorf("stat output: %w", err)
		}
		res.Bytes = st.Size()
		return true, nil
	}

	t = time.Now()
	sum, err := verify.Inspect(res.Output)
	if err == nil {
		err = sum.Expect(c.opts.Projection.Columns, res.Rows)
	}
	metrics.RecordStep(c.opts.Job, "verify", err, time.Since(t))
	if err != nil {
		return true, err
	}
	res.Bytes = sum.Size
	res.Checksum = sum.Checksum
	return true, nil
}

// replaced reports whether dst differs from the file observed before the
// copy. A query that failed before writing leaves an earlier output intact.
func replaced(prior fs.FileInfo, dst string) bool {
	if prior == nil {
		return true
	}
	now, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return !os.SameFile(prior, now) || !now.ModTime().Equal(prior.ModTime()) || now.Size() != prior.Size()
}

// finish logs res, emits metrics and appends the ledger row.
func (c *Converter) finish(ctx context.Context, j Job, res *FileResult, start time.Time) {
	res.Elapsed = time.Since(start)

	fields := log.Fields{
		"year":    j.Year,
		"file":    filepath.Base(res.Source),
		"rows":    res.Rows,
		"size":    humanize.Bytes(uint64(res.Bytes)),
		"elapsed": res.Elapsed.Truncate(time.Millisecond),
	}
	if res.Err != nil {
		log.WithFields(fields).WithError(res.Err).Error("conversion failed")
	} else {
		log.WithFields(fields).Info("converted")
	}

	metrics.RecordFile(c.opts.Job, j.Year, res.Err)
	metrics.RecordRows(c.opts.Job, "written", res.Rows)
	metrics.RecordBytes(c.opts.Job, res.Bytes)

	if c.opts.Recorder == nil {
		return
	}
	rec := report.Record{
		Job:      c.opts.Job,
		Year:     j.Year,
		Source:   res.Source,
		Output:   res.Output,
		Status:   report.StatusOK,
		Rows:     res.Rows,
		Bytes:    res.Bytes,
		Checksum: res.Checksum,
		Duration: res.Elapsed,
	}
	if res.Err != nil {
		rec.Status = report.StatusFailed
		rec.Error = res.Err.Error()
	}
	t := time.Now()
	// The ledger must not turn a converted file into a failure.
	err := c.opts.Recorder.Record(context.WithoutCancel(ctx), rec)
	metrics.RecordStep(c.opts.Job, "report", err, time.Since(t))
	if err != nil {
		log.WithField("file", filepath.Base(res.Source)).Warnf("run ledger: %v", err)
	}
}
