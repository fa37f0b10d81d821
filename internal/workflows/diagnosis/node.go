package diagnosis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

// LookupNode returns the enrichment node that resolves ICD-11 codes for
// every extracted diagnosis. Without configured credentials every item
// passes through with empty codes. Lookup failures degrade the affected
// item; disambiguation model failures abort the run.
func LookupNode(c model.Client, icd *terminology.ICDClient, logger *slog.Logger) pipeline.Node {
	return pipeline.NewNode("icd_diagnosis_lookup", func(ctx context.Context, s state.State) (state.State, error) {
		extracted, err := pipeline.Extracted[Extracted](s)
		if err != nil {
			return s, fmt.Errorf("%w: %w", pipeline.ErrEnrichFailed, err)
		}

		diagnoses := make([]Diagnosis, 0, len(extracted))
		for _, diag := range extracted {
			processed := Diagnosis{Extracted: diag}

			if icd.Enabled() {
				code, title, err := resolveICD11(ctx, c, icd, diag, logger)
				if err != nil {
					return s, fmt.Errorf("%w: %s: %w", pipeline.ErrEnrichFailed, diag.Name, err)
				}
				processed.ICD11Code = code
				processed.ICD11Title = title
			}

			diagnoses = append(diagnoses, processed)
		}

		return s.Set(pipeline.KeyProcessed, diagnoses), nil
	})
}

// resolveICD11 runs the matching stages for one diagnosis: flexisearch on
// the translated name, relevance filtering, then candidate selection.
func resolveICD11(ctx context.Context, c model.Client, icd *terminology.ICDClient, diag Extracted, logger *slog.Logger) (string, string, error) {
	candidates, err := icd.Search(ctx, diag.NameTranslated)
	if err != nil {
		terminology.LogDegrade(ctx, logger, diag.Name, err)
		return "", "", nil
	}

	candidates = terminology.Filter(candidates, terminology.ICDMinScore)
	if len(candidates) == 0 {
		return "", "", nil
	}

	selected, err := terminology.Select(
		ctx, c,
		terminology.Disambiguation{System: "ICD-11", Kind: "diagnosis"},
		terminology.Reference{
			Text:       diag.Reference,
			Name:       diag.Name,
			Translated: diag.NameTranslated,
			SearchTerm: diag.NameTranslated,
		},
		candidates,
		terminology.ICDMaxScore,
	)
	if err != nil {
		return "", "", err
	}

	return selected.ID, selected.Label, nil
}
