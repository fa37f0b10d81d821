// Package aggregate implements the run-all-domains workflow: every
// registered entity-domain workflow executes against the same letter
// independently, each producing its own output table.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aidh-ms/MedMiner/internal/workflows"
	"github.com/aidh-ms/MedMiner/pkg/naming"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

// Definition declares the aggregate workflow over the given registry. The
// domain set is resolved at build time, so workflows registered after
// bootstrap are picked up by later builds.
func Definition(reg *workflows.Registry) workflows.Definition {
	name := naming.DeriveName("ExtractionWorkflow")

	return workflows.Definition{
		Name: name,
		Build: func(rt *workflows.Runtime) (workflows.Workflow, error) {
			defs := reg.Domains()
			if len(defs) == 0 {
				return nil, fmt.Errorf("workflow %s: no domain workflows registered", name)
			}

			branches := make([]pipeline.Branch, 0, len(defs))
			for _, def := range defs {
				wf, err := def.Build(rt)
				if err != nil {
					return nil, fmt.Errorf("build %s: %w", def.Name, err)
				}

				runner, ok := wf.(pipeline.Runner)
				if !ok {
					return nil, fmt.Errorf("workflow %s cannot run as a fan-out branch", def.Name)
				}

				branches = append(branches, pipeline.Branch{Name: def.Name, Runner: runner})
			}

			return &workflow{
				name:     name,
				branches: branches,
				logger:   rt.Logger.With("workflow", name),
			}, nil
		},
	}
}

type workflow struct {
	name     string
	branches []pipeline.Branch
	logger   *slog.Logger
}

func (w *workflow) Name() string {
	return w.name
}

// RunMany fans each letter out to every domain branch. Failures are
// isolated per domain: one domain aborting never stops the others, and all
// failures are joined into the returned error alongside the results of the
// domains that completed.
func (w *workflow) RunMany(ctx context.Context, letters []pipeline.Letter) ([]pipeline.Result, error) {
	var (
		results []pipeline.Result
		errs    []error
	)

	for _, letter := range letters {
		branchResults, err := pipeline.FanOut(ctx, w.branches, letter)
		if err != nil {
			errs = append(errs, fmt.Errorf("letter %s: %w", letter.PatientID, err))
		}

		for _, br := range branchResults {
			results = append(results, *br.Result)
		}
	}

	return results, errors.Join(errs...)
}
