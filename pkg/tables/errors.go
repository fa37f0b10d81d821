package tables

import "errors"

// Sentinel errors for table storage operations.
var (
	ErrInvalidTableName = errors.New("invalid table name")
	ErrWriteFailed      = errors.New("table write failed")
)
