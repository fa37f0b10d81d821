package workflows

import "errors"

// Sentinel errors for workflow resolution and input handling.
var (
	ErrUnknownWorkflow = errors.New("unknown workflow")
	ErrEmptyInput      = errors.New("no letters to process")
)
