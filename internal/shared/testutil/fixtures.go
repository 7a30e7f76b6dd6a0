package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Source and flag report contents for the reference consolidation scenario:
// two source files dated 20250814 with 5 and 3 rows, one row repeated
// across them, and a flag report with one row per mapped qc_check value.
var (
	SourceFileA = []string{
		"1;111111111;John Smith;ACC001;E1",
		"1;222222222;Jane Doe;ACC002;E2",
		"2;333333333;Bob Jones;ACC003;E1",
		"1;444444444;Alice Brown;ACC004;E3",
		"2;555555555;Carl White;ACC005;E2",
	}

	SourceFileB = []string{
		"1;222222222;Jane Doe;ACC002;E2",
		"2;121212121;Hal Red;ACC006;E1",
		"1;131313131;Ivy Pink;ACC007;E3",
	}

	FlagReport = []string{
		"qc_check;tin_type;tin;name;account_number;notes",
		"qc_check_1;SSN;666666666;Dan Green;ACC010;first",
		"qc_check_2;EIN;777777777;Eve Black;ACC011;",
		"qc_check_3;SSN;888888888;Fay Gray;ACC012;",
		"qc_check_4;ITIN;999999999;Gus Blue;ACC013;",
	}
)

const (
	SourceNameA  = "output_20250814_part1.txt"
	SourceNameB  = "output_20250814_part2.txt"
	FlagFileName = "accounts_20250814.txt"

	// ExpectedFinalRows is 5 + 3 - 1 duplicate + 4 flag rows
	ExpectedFinalRows = 11
)

// ConsolidationFixture points at a scenario written to a temp directory
type ConsolidationFixture struct {
	Root      string
	SourceDir string
	FlagDir   string
	FlagFile  string
}

// WriteLines writes lines joined by "\n" to dir/name and returns the path
func WriteLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// NewConsolidationFixture writes the reference scenario under t.TempDir()
func NewConsolidationFixture(t *testing.T) ConsolidationFixture {
	t.Helper()

	root := t.TempDir()
	fx := ConsolidationFixture{
		Root:      root,
		SourceDir: filepath.Join(root, "source"),
		FlagDir:   filepath.Join(root, "flags"),
	}

	WriteLines(t, fx.SourceDir, SourceNameA, SourceFileA...)
	WriteLines(t, fx.SourceDir, SourceNameB, SourceFileB...)
	fx.FlagFile = WriteLines(t, fx.FlagDir, FlagFileName, FlagReport...)

	return fx
}

// ListDir returns the names of the entries in dir, failing the test on error
func ListDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
