package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError = "error"
	FieldFile  = "file"
	FieldFiles = "files"

	// Parse statistics fields.
	FieldEntries     = "entries"
	FieldMacros      = "macros"
	FieldDiagnostics = "diagnostics"
	FieldDuplicates  = "duplicates"
	FieldRenames     = "renames"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
