// Package pipeline composes ordered node sequences into executable
// per-letter pipelines on top of go-agents-orchestration state graphs.
// It provides the generic extract, passthrough, and storage nodes;
// enrichment nodes are supplied by the entity-domain packages.
package pipeline

import "errors"

// Sentinel errors for pipeline operations.
var (
	ErrBuildFailed   = errors.New("pipeline build failed")
	ErrExtractFailed = errors.New("extraction failed")
	ErrEnrichFailed  = errors.New("enrichment failed")
	ErrStoreFailed   = errors.New("storage failed")
)
