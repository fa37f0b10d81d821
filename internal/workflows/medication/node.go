package medication

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

// parenthetical qualifiers like "(acetylsalicylic acid)" narrow exact-match
// recall; the primary search key drops them.
var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// LookupNode returns the enrichment node that resolves RxNorm identifiers
// and ATC codes for every extracted medication. Lookup failures degrade the
// affected item to empty codes; disambiguation model failures abort the run.
func LookupNode(c model.Client, rxnav *terminology.RxNavClient, logger *slog.Logger) pipeline.Node {
	return pipeline.NewNode("rx_nav_lookup", func(ctx context.Context, s state.State) (state.State, error) {
		extracted, err := pipeline.Extracted[Extracted](s)
		if err != nil {
			return s, fmt.Errorf("%w: %w", pipeline.ErrEnrichFailed, err)
		}

		medications := make([]Medication, 0, len(extracted))
		for _, med := range extracted {
			rxcui, err := resolveRxCUI(ctx, c, rxnav, med, logger)
			if err != nil {
				return s, fmt.Errorf("%w: %s: %w", pipeline.ErrEnrichFailed, med.Name, err)
			}

			if rxcui == "" {
				medications = append(medications, Medication{Extracted: med})
				continue
			}

			codes, err := rxnav.Codes(ctx, rxcui, "ATC")
			if err != nil {
				terminology.LogDegrade(ctx, logger, med.Name, err)
				codes = nil
			}

			medications = append(medications, Medication{Extracted: med, RxCUI: rxcui, ATCCodes: codes})
		}

		return s.Set(pipeline.KeyProcessed, medications), nil
	})
}

// resolveRxCUI runs the matching stages for one medication: exact name
// lookup on the primary search key, then an approximate lookup broadened
// with the active ingredient, then candidate selection.
func resolveRxCUI(ctx context.Context, c model.Client, rxnav *terminology.RxNavClient, med Extracted, logger *slog.Logger) (string, error) {
	key := searchKey(med.NameTranslated)

	candidates, err := rxnav.ExactMatch(ctx, key)
	if err != nil {
		terminology.LogDegrade(ctx, logger, med.Name, err)
		candidates = nil
	}

	if len(candidates) == 0 {
		term := strings.TrimSpace(key + " " + med.ActiveIngredient)
		candidates, err = rxnav.ApproximateMatch(ctx, term)
		if err != nil {
			terminology.LogDegrade(ctx, logger, med.Name, err)
			candidates = nil
		}
	}

	if len(candidates) == 0 {
		return "", nil
	}

	selected, err := terminology.Select(
		ctx, c,
		terminology.Disambiguation{System: "RxNorm", Kind: "medication"},
		terminology.Reference{
			Text:       med.Reference,
			Name:       med.Name,
			Translated: med.NameTranslated,
			SearchTerm: key,
		},
		candidates,
		terminology.RxNavMaxScore,
	)
	if err != nil {
		return "", err
	}

	return selected.ID, nil
}

func searchKey(name string) string {
	return strings.TrimSpace(parenthetical.ReplaceAllString(name, ""))
}
