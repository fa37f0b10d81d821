package procedure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

// LookupNode returns the enrichment node that resolves SNOMED CT concepts
// for every extracted procedure. Without a configured Snowstorm server every
// item passes through with empty codes. Lookup failures degrade the current
// relaxation stage; disambiguation model failures abort the run.
func LookupNode(c model.Client, snowstorm *terminology.SnowstormClient, logger *slog.Logger) pipeline.Node {
	return pipeline.NewNode("snomed_procedure_lookup", func(ctx context.Context, s state.State) (state.State, error) {
		extracted, err := pipeline.Extracted[Extracted](s)
		if err != nil {
			return s, fmt.Errorf("%w: %w", pipeline.ErrEnrichFailed, err)
		}

		procedures := make([]Procedure, 0, len(extracted))
		for _, proc := range extracted {
			processed := Procedure{Extracted: proc}

			if snowstorm.Enabled() {
				id, fsn, err := resolveSnomed(ctx, c, snowstorm, proc, logger)
				if err != nil {
					return s, fmt.Errorf("%w: %s: %w", pipeline.ErrEnrichFailed, proc.Name, err)
				}
				processed.SnomedID = id
				processed.SnomedFSN = fsn
			}

			procedures = append(procedures, processed)
		}

		return s.Set(pipeline.KeyProcessed, procedures), nil
	})
}

// resolveSnomed walks the ECL relaxation ladder for one procedure, stopping
// at the first query level that yields candidates. Snowstorm candidates
// carry no relevance score, so selection falls to the single-candidate
// shortcut or the disambiguation call.
func resolveSnomed(ctx context.Context, c model.Client, snowstorm *terminology.SnowstormClient, proc Extracted, logger *slog.Logger) (string, string, error) {
	for _, ecl := range terminology.ECLQueries(proc.SearchTerm) {
		candidates, err := snowstorm.SearchConcepts(ctx, ecl)
		if err != nil {
			terminology.LogDegrade(ctx, logger, proc.Name, err)
			continue
		}

		if len(candidates) == 0 {
			continue
		}

		selected, err := terminology.Select(
			ctx, c,
			terminology.Disambiguation{System: "SNOMED CT", Kind: "procedure"},
			terminology.Reference{
				Text:       proc.Reference,
				Name:       proc.Name,
				Translated: proc.NameTranslated,
				SearchTerm: proc.SearchTerm,
			},
			candidates,
			0,
		)
		if err != nil {
			return "", "", err
		}

		return selected.ID, selected.Label, nil
	}

	return "", "", nil
}
