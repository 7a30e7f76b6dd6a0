package exporter

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"tincli/internal/config"
	"tincli/pkg/contracts/domain"
)

// WriteReadme writes the plain-text statistics report for a run
func WriteReadme(w io.Writer, stats *domain.SummaryStats) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	line("Consolidation Summary")
	line("=====================")
	line("Generated: %s", stats.GeneratedAt.Format(config.ReportTimestampLayout))
	line("Run date: %s", stats.RunDate)
	line("Run ID: %s", stats.RunID)
	line("Source folder: %s", stats.SourceFolder)
	line("Flag file: %s", stats.FlagFile)
	line("Flag date: %s", stats.FlagDate)
	line("")

	line("Source files")
	line("No. of source files: %d", stats.FileCount)
	line("No. of raw rows: %d", stats.RawRowCount)
	line("No. of duplicates removed: %d", stats.DuplicatesRemoved)
	line("No. of primary rows after deduplication: %d", stats.PrimaryRowCount)
	line("")

	line("Flag report")
	line("No. of flag rows read: %d", stats.FlagRowsRead)
	line("qc_check counts:")
	for _, key := range sortedKeys(stats.QcCheckCounts) {
		line("  %s: %d", displayKey(key), stats.QcCheckCounts[key])
	}
	line("No. of qc_check_8 matches: %d", stats.QcCheck8Matches)
	line("No. of flag rows kept: %d", stats.FlagRowsKept)
	line("")

	line("Output")
	line("No. of rows in final output: %d", stats.FinalRowCount)
	line("error_codes counts:")
	for _, key := range sortedKeys(stats.ErrorCodeCounts) {
		line("  %s: %d", displayKey(key), stats.ErrorCodeCounts[key])
	}
	line("No. of date parse warnings: %d", stats.DateParseWarnings)
	line("Files:")
	for _, path := range stats.Outputs {
		line("  %s", filepath.Base(path))
	}

	return bw.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func displayKey(key string) string {
	if key == "" {
		return "(blank)"
	}
	return key
}
