// Package exporter writes the consolidated output artifacts.
//
// Every run produces Final_consolidated_output_<YYYYMMDD>.csv (comma
// delimited), a .txt twin (semicolon delimited), an optional .xlsx workbook
// and a README.txt statistics report. All files share the header
// account_number,error_codes,tin_match_date.
//
// Files are staged as temp files in the output directory through an
// OutputSet and renamed into place only after every artifact was written,
// so a failed run leaves no partial output behind.
//
// Example usage:
//
//	exp := exporter.NewExporter(cfg.Export, logger)
//	paths, err := exp.Export(ctx, outputDir, time.Now(), rows, stats)
package exporter
