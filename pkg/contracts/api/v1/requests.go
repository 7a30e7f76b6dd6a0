// Package api contains API contract definitions for the TIN consolidation service.
// Version v1 represents the current stable API version.
package api

// ConsolidateRequest starts a consolidation run
type ConsolidateRequest struct {
	SourceFolder string `json:"source_folder" validate:"required,path"`
	FlagFile     string `json:"flag_file" validate:"required,path"`
	// OutputDir overrides the default of writing beside the flag file
	OutputDir string `json:"output_dir,omitempty" validate:"omitempty,path"`
}
