package file

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscover_MatchesPatternSorted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, n := range []string{"2023_12.csv", "2023_02.csv", "2023_01.csv", "2024_01.csv", "2023_03.txt", "notes.csv"} {
		touch(t, dir, n)
	}
	if err := os.Mkdir(filepath.Join(dir, "2023_99.csv"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := Discover(dir, "2023")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "2023_01.csv"),
		filepath.Join(dir, "2023_02.csv"),
		filepath.Join(dir, "2023_12.csv"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Discover = %#v, want %#v", got, want)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	t.Parallel()

	got, err := Discover(filepath.Join(t.TempDir(), "nope"), "2023")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no files, got %#v", got)
	}
}

func TestDiscover_DirWithGlobMeta(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "raw[2023]")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	touch(t, dir, "2023_05.csv")

	got, err := Discover(dir, "2023")
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got)=%d; want 1 (%#v)", len(got), got)
	}
}

func TestMonthToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024_07.csv", "07", false},
		{"/data/2023/2023_01.csv", "01", false},
		{"2023_11_extra.csv", "11", false},
		{"2023_1.tar.gz", "1", false},
		{"202301.csv", "", true},
		{"2023_.csv", "", true},
	}
	for _, tc := range cases {
		got, err := MonthToken(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("MonthToken(%q) = %q, nil; want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("MonthToken(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("MonthToken(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	got, err := OutputPath("/out/2024", "2024", "/in/2024/2024_07.csv", "parquet")
	if err != nil {
		t.Fatalf("OutputPath error: %v", err)
	}
	if want := filepath.Join("/out/2024", "2024_07.parquet"); got != want {
		t.Fatalf("OutputPath = %q; want %q", got, want)
	}
	if got := OutputName("2023", "01", ".parquet"); got != "2023_01.parquet" {
		t.Fatalf("OutputName = %q; want 2023_01.parquet", got)
	}
}
