// Package dataprocessing implements the consolidation pipeline stages.
//
// # Architecture
//
// The package is organized into four stages that run in sequence:
//
// 1. Ingestor: reads every source file in a folder and tags each non-blank
// line with the date token from its file name
// 2. PrimaryTable: parses tagged lines into the fixed six-column schema,
// removes exact duplicates and indexes (name, tin) pairs
// 3. FlagProcessor: loads the flag report, assigns error codes from the
// qc_check mapping and the primary table lookup, and drops uncoded rows
// 4. Combiner: appends flag rows after primary rows, narrows them to the
// output columns and reformats dates
//
// # Data Flow
//
//	source folder → Ingestor → RawRecords → PrimaryTable ─┐
//	flag report → FlagProcessor (uses PrimaryTable index) ─┴→ Combiner → CombinedRows
//
// Rules are pure functions over value rows: applying a rule returns a new
// row and never mutates its input. The primary table is fully built before
// the flag processor reads its index and is never modified afterwards.
//
// # Error Handling
//
// Stages return *errors.AppError values from internal/errors:
//
//   - NoInputFiles when the source folder has no matching files
//   - SchemaMismatch naming the file and line of a row with the wrong width
//   - FlagFileNotFound and FlagFileFormat for flag report problems
//   - IO for read failures
//
// Unparsable dates are the only recovered condition: the date is left empty
// and the warning is counted.
package dataprocessing
