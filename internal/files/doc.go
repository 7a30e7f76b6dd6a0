// Package files provides file discovery and text reading utilities for the
// consolidation pipeline.
//
// Discovery enumerates source files in a folder in lexical name order, so a
// run over the same folder always sees files in the same sequence.
//
// ExtractDate pulls the 8-digit date token that follows a known prefix out of
// a file name or path, falling back to "Unknown".
//
// ReadLines and OpenText decode legacy exports (windows-1252, Shift-JIS,
// UTF-16) into UTF-8 and strip a leading byte order mark.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	sources, err := discovery.FindFilesByPattern("/data/in", "*.txt")
//
//	date := files.ExtractDate("output_20250814.txt", "output") // "20250814"
//
//	lines, err := files.ReadLines(sources[0].Path, "windows-1252")
package files
