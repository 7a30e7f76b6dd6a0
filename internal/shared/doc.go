// Package shared holds code used across packages that belongs to no single
// layer. Today that is the testutil subpackage:
//
//	- BufferedSlogHandler and assertions for inspecting slog output
//	- the reference consolidation scenario (two source extracts and a flag
//	  report) written to t.TempDir()
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    fx := testutil.NewConsolidationFixture(t)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
