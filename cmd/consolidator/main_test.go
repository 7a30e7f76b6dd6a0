package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tincli/internal/shared/testutil"
)

func runCLI(t *testing.T, ctx context.Context, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(ctx, args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_WithFlags(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)

	code, stdout, stderr := runCLI(t, context.Background(), "", "-src", fx.SourceDir, "-flag", fx.FlagFile, "-xlsx")

	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Consolidated 11 rows from 2 files. Output saved to: "+fx.FlagDir)
	assert.NotContains(t, stdout, "Warning:")

	files := testutil.ListDir(t, fx.FlagDir)
	assert.Contains(t, files, "README.txt")
	assert.Len(t, files, 5, "flag report plus csv, txt, xlsx and README")
}

func TestRun_Prompts(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)
	out := filepath.Join(fx.Root, "out")

	code, stdout, stderr := runCLI(t, context.Background(),
		fx.SourceDir+"\n"+fx.FlagFile+"\n", "-out", out)

	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Source folder: ")
	assert.Contains(t, stdout, "Flag report file: ")
	assert.Contains(t, testutil.ListDir(t, out), "README.txt")
}

func TestRun_CancelIsSilent(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  func(fx testutil.ConsolidationFixture) []string
	}{
		{"blank source answer", "\n", func(testutil.ConsolidationFixture) []string { return nil }},
		{"closed stdin", "", func(testutil.ConsolidationFixture) []string { return nil }},
		{"blank flag answer", "\n", func(fx testutil.ConsolidationFixture) []string { return []string{"-src", fx.SourceDir} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := testutil.NewConsolidationFixture(t)

			code, stdout, stderr := runCLI(t, context.Background(), tt.stdin, tt.args(fx)...)

			assert.Equal(t, exitOK, code)
			assert.NotContains(t, stdout, "Consolidated")
			assert.NotContains(t, stderr, "Error:")
			assert.Equal(t, []string{testutil.FlagFileName}, testutil.ListDir(t, fx.FlagDir))
		})
	}
}

func TestRun_Errors(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)

	code, _, stderr := runCLI(t, context.Background(), "",
		"-src", fx.SourceDir, "-flag", filepath.Join(fx.FlagDir, "missing_20250814.txt"))

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "Error: Flag report not found")
}

func TestRun_ContextCancelled(t *testing.T) {
	fx := testutil.NewConsolidationFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, _, stderr := runCLI(t, ctx, "", "-src", fx.SourceDir, "-flag", fx.FlagFile)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "No output files were written")
	assert.Equal(t, []string{testutil.FlagFileName}, testutil.ListDir(t, fx.FlagDir))
}

func TestRun_VersionAndUsage(t *testing.T) {
	code, stdout, _ := runCLI(t, context.Background(), "", "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "1.0.0")

	code, _, _ = runCLI(t, context.Background(), "", "-nope")
	assert.Equal(t, exitUsage, code)
}
