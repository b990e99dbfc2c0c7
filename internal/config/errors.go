package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"

	// Editor errors
	ErrDraftNotFound       = "Draft not found"
	ErrUnknownField        = "Unknown field"
	ErrUnknownBlockKind    = "Unknown block kind"
	ErrInvalidBlockID      = "Invalid block id"
	ErrMissingRequired     = "Title and scripture are required"
	ErrSubmissionFailed    = "Could not save the sermon"
	ErrInternalServerError = "Internal server error"

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"
)
