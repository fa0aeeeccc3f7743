// Package flighttest builds small on-time performance CSV fixtures for tests.
package flighttest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flightprep/internal/dataset"
)

// Extra are source columns that every fixture carries but no projection keeps.
var Extra = []string{"DepDelay", "ArrDelay", "CancellationCode"}

// Row describes one flight leg. Empty Label means an undefined ArrDel15.
type Row struct {
	Cancelled string
	Diverted  string
	Label     string
	Carrier   string
}

// Normal is a completed, on-time flight.
func Normal() Row { return Row{Cancelled: "0", Diverted: "0", Label: "0", Carrier: "AA"} }

// Late is a completed flight that arrived more than 15 minutes late.
func Late() Row { return Row{Cancelled: "0", Diverted: "0", Label: "1", Carrier: "DL"} }

// CancelledRow is a cancelled flight (its label is undefined).
func CancelledRow() Row { return Row{Cancelled: "1", Diverted: "0", Label: "", Carrier: "UA"} }

// DivertedRow is a diverted flight.
func DivertedRow() Row { return Row{Cancelled: "0", Diverted: "1", Label: "", Carrier: "WN"} }

// Unlabeled is a completed flight with a missing ArrDel15.
func Unlabeled() Row { return Row{Cancelled: "0", Diverted: "0", Label: "", Carrier: "B6"} }

// Header returns the fixture header: Extra interleaved with the retained
// columns, so column order in the source differs from the projection order.
func Header() []string {
	h := make([]string, 0, len(dataset.FlightDelayColumns)+len(Extra))
	h = append(h, Extra[0])
	h = append(h, dataset.FlightDelayColumns[13:]...)
	h = append(h, Extra[1:]...)
	h = append(h, dataset.FlightDelayColumns[:13]...)
	return h
}

// values renders r against Header().
func (r Row) values(year, month string, idx int) []string {
	v := map[string]string{
		"Year":                            year,
		"Month":                           strings.TrimLeft(month, "0"),
		"DayofMonth":                      "1",
		"DayOfWeek":                       "7",
		"FlightDate":                      year + "-" + month + "-01",
		"Reporting_Airline":               r.Carrier,
		"DOT_ID_Reporting_Airline":        "19805",
		"Flight_Number_Reporting_Airline": "10" + string(rune('0'+idx%10)),
		"OriginAirportID":                 "12478",
		"OriginCityMarketID":              "31703",
		"OriginState":                     "NY",
		"Origin":                          "JFK",
		"DestAirportID":                   "12892",
		"DestCityMarketID":                "32575",
		"DestState":                       "CA",
		"Dest":                            "LAX",
		"CRSDepTime":                      "0700",
		"DepTimeBlk":                      "0700-0759",
		"CRSArrTime":                      "1030",
		"ArrTimeBlk":                      "1000-1059",
		"Distance":                        "2475.00",
		"DistanceGroup":                   "10",
		"CRSElapsedTime":                  "390.00",
		"Cancelled":                       r.Cancelled,
		"Diverted":                        r.Diverted,
		"ArrDel15":                        r.Label,
		"DepDelay":                        "3.00",
		"ArrDelay":                        "-4.00",
		"CancellationCode":                "",
	}
	h := Header()
	out := make([]string, len(h))
	for i, name := range h {
		out[i] = v[name]
	}
	return out
}

// WriteCSV writes dir/{year}_{month}.csv with rows and returns its path.
func WriteCSV(tb testing.TB, dir, year, month string, rows ...Row) string {
	tb.Helper()
	return WriteCSVWithHeader(tb, dir, year+"_"+month+".csv", Header(), year, month, rows...)
}

// WriteCSVWithHeader writes name with an explicit header; rows are rendered
// against the full fixture header and then cut down to header. Header names
// match the fixture columns case-insensitively.
func WriteCSVWithHeader(tb testing.TB, dir, name string, header []string, year, month string, rows ...Row) string {
	tb.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("Create: %v", err)
	}
	defer f.Close()

	full := Header()
	pos := make(map[string]int, len(full))
	for i, n := range full {
		pos[strings.ToLower(n)] = i
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		tb.Fatalf("write header: %v", err)
	}
	for i, r := range rows {
		all := r.values(year, month, i)
		rec := make([]string, len(header))
		for j, n := range header {
			if p, ok := pos[strings.ToLower(n)]; ok {
				rec[j] = all[p]
			}
		}
		if err := w.Write(rec); err != nil {
			tb.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tb.Fatalf("flush: %v", err)
	}
	return path
}

// Without returns Header() minus the named columns.
func Without(names ...string) []string {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var out []string
	for _, h := range Header() {
		if _, ok := drop[h]; !ok {
			out = append(out, h)
		}
	}
	return out
}
