// Package workflows defines the workflow contract shared by every entity
// domain: the runtime dependency bundle, the definition shape a domain
// registers, and the registry mapping derived names to definitions.
package workflows

import (
	"context"
	"log/slog"

	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
	"github.com/aidh-ms/MedMiner/pkg/tables"
)

// Runtime bundles the dependencies that workflow definitions require.
// It is constructed once by the composition root and shared across builds.
type Runtime struct {
	Model     model.Client
	Tables    tables.System
	RxNav     *terminology.RxNavClient
	ICD       *terminology.ICDClient
	Snowstorm *terminology.SnowstormClient
	Statement string
	Logger    *slog.Logger
}

// Workflow is an executable workflow over a collection of letters.
type Workflow interface {
	Name() string
	RunMany(ctx context.Context, letters []pipeline.Letter) ([]pipeline.Result, error)
}

// Definition maps a stable derived name to a buildable workflow. Domain
// marks entity-domain workflows that the aggregate workflow fans out over.
type Definition struct {
	Name   string
	Domain bool
	Build  func(rt *Runtime) (Workflow, error)
}
