package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"flightprep/internal/flighttest"
)

type leg struct {
	Origin   string `parquet:"Origin"`
	ArrDel15 int64  `parquet:"ArrDel15"`
}

func TestRun_Parquet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "2023_01.parquet")
	if err := parquet.WriteFile(path, []leg{{"JFK", 0}, {"LAX", 1}}); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if code := run([]string{"-head", "1", path}, &out, &errOut); code != 0 {
		t.Fatalf("exit=%d; stderr=%q", code, errOut.String())
	}
	for _, want := range []string{"columns:  2 (Origin, ArrDel15)", "rows:     2", "| JFK | 0"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output=%q; want it to contain %q", out.String(), want)
		}
	}
	if strings.Contains(out.String(), "LAX") {
		t.Fatalf("output=%q; -head 1 printed more than one row", out.String())
	}
}

func TestRun_CSVHeaderCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	flighttest.WriteCSV(t, dir, "2023", "01", flighttest.Normal())
	flighttest.WriteCSVWithHeader(t, dir, "2023_02.csv", flighttest.Without("ArrDel15"), "2023", "02", flighttest.Normal())

	var out, errOut bytes.Buffer
	code := run([]string{"-json", filepath.Join(dir, "2023_01.csv"), filepath.Join(dir, "2023_02.csv")}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit=%d; want 1 for a file with missing columns", code)
	}

	dec := json.NewDecoder(&out)
	var reps []fileReport
	for dec.More() {
		var r fileReport
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decode: %v", err)
		}
		reps = append(reps, r)
	}
	if len(reps) != 2 {
		t.Fatalf("reports=%d; want 2", len(reps))
	}
	if len(reps[0].Checksum) != 16 || reps[0].Checksum == reps[1].Checksum {
		t.Fatalf("checksums=%q, %q; want distinct xxh3 digests", reps[0].Checksum, reps[1].Checksum)
	}
	if reps[0].Error != "" || reps[0].Kind != "csv" {
		t.Fatalf("first report=%+v; want a clean csv report", reps[0])
	}
	if len(reps[1].Missing) != 1 || reps[1].Missing[0] != "ArrDel15" {
		t.Fatalf("second report missing=%v; want [ArrDel15]", reps[1].Missing)
	}
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 2 {
		t.Fatalf("exit=%d; want 2", code)
	}
	if code := run([]string{filepath.Join(t.TempDir(), "nope.parquet")}, &out, &errOut); code != 1 {
		t.Fatalf("exit=%d; want 1 for an unreadable file", code)
	}
}
