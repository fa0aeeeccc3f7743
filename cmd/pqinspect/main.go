// Command pqinspect prints what flightprep produced or is about to read.
//
// Parquet arguments are summarized (columns, rows, size, checksum). CSV
// arguments get a header check against the flight-delay projection.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"flightprep/internal/dataset"
	"flightprep/internal/probe"
	"flightprep/internal/verify"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type fileReport struct {
	Path     string     `json:"path"`
	Kind     string     `json:"kind"`
	Columns  []string   `json:"columns,omitempty"`
	Rows     int64      `json:"rows,omitempty"`
	Size     int64      `json:"size,omitempty"`
	Checksum string     `json:"checksum,omitempty"`
	Head     [][]string `json:"head,omitempty"`
	Missing  []string   `json:"missing,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pqinspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	head := fs.Int("head", 0, "print the first N rows of each Parquet file")
	asJSON := fs.Bool("json", false, "emit one JSON object per file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: pqinspect [-head N] [-json] FILE...")
		return 2
	}

	p := dataset.FlightDelay()
	enc := json.NewEncoder(stdout)
	code := 0
	for _, path := range fs.Args() {
		rep := inspect(path, p, *head)
		if rep.Error != "" {
			code = 1
		}
		if *asJSON {
			if err := enc.Encode(rep); err != nil {
				fmt.Fprintf(stderr, "pqinspect: %v\n", err)
				return 1
			}
			continue
		}
		printText(stdout, rep)
	}
	return code
}

func inspect(path string, p dataset.Projection, head int) fileReport {
	rep := fileReport{Path: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rep.Kind = "csv"
		header, err := probe.ReadHeader(path, ',')
		if err != nil {
			rep.Error = err.Error()
			return rep
		}
		rep.Columns = header
		if rep.Checksum, err = verify.Checksum(path); err != nil {
			rep.Error = err.Error()
			return rep
		}
		if err := probe.Check(path, header, probe.Required(p)); err != nil {
			rep.Error = err.Error()
			var mce *probe.MissingColumnsError
			if errors.As(err, &mce) {
				rep.Missing = mce.Missing
			}
		}
	default:
		rep.Kind = "parquet"
		s, err := verify.Inspect(path)
		if err != nil {
			rep.Error = err.Error()
			return rep
		}
		rep.Columns, rep.Rows, rep.Size, rep.Checksum = s.Columns, s.Rows, s.Size, s.Checksum
		if head > 0 {
			if rep.Head, err = verify.Head(path, head); err != nil {
				rep.Error = err.Error()
			}
		}
	}
	return rep
}

func printText(w io.Writer, rep fileReport) {
	fmt.Fprintf(w, "%s\n", rep.Path)
	if rep.Kind == "csv" {
		fmt.Fprintf(w, "  header:   %d columns\n", len(rep.Columns))
		fmt.Fprintf(w, "  checksum: %s\n", rep.Checksum)
		if rep.Error != "" {
			fmt.Fprintf(w, "  error:    %s\n", rep.Error)
		} else {
			fmt.Fprintf(w, "  status:   all required columns present\n")
		}
		return
	}
	if rep.Error != "" && rep.Columns == nil {
		fmt.Fprintf(w, "  error:    %s\n", rep.Error)
		return
	}
	fmt.Fprintf(w, "  columns:  %d (%s)\n", len(rep.Columns), strings.Join(rep.Columns, ", "))
	fmt.Fprintf(w, "  rows:     %s\n", humanize.Comma(rep.Rows))
	fmt.Fprintf(w, "  size:     %s\n", humanize.Bytes(uint64(rep.Size)))
	fmt.Fprintf(w, "  checksum: %s\n", rep.Checksum)
	for _, r := range rep.Head {
		fmt.Fprintf(w, "  | %s\n", strings.Join(r, " | "))
	}
	if rep.Error != "" {
		fmt.Fprintf(w, "  error:    %s\n", rep.Error)
	}
}
