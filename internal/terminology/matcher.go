// Package terminology implements the multi-stage matching algorithm shared
// by every enrichment step: exact then fuzzy lookup against an external
// terminology service, relevance filtering, deterministic selection, and a
// model-assisted disambiguation call when ranking alone cannot resolve a
// single candidate.
package terminology

import (
	"context"
	"fmt"
	"strings"

	"github.com/aidh-ms/MedMiner/pkg/model"
)

// Candidate is one terminology-service match for a search key. Candidates
// are transient: they exist only during one item's matching pass and are
// never persisted.
type Candidate struct {
	ID    string
	Score float64
	Label string
}

// Reference carries the extracted item's context into a disambiguation call.
type Reference struct {
	Text       string
	Name       string
	Translated string
	SearchTerm string
}

// Disambiguation names the coding system and item kind for the expert
// framing of a disambiguation call.
type Disambiguation struct {
	System string
	Kind   string
}

const disambiguationSystem = "You are a medical coding assistant."

const disambiguationTemplate = `You are a medical coding expert. Given a %[2]s description and a list of %[1]s matches, select the most appropriate %[1]s code.

%[2]s information:
- Original reference: %[3]s
- Name: %[4]s
- Translated name: %[5]s
- Search term: %[6]s

Available %[1]s matches (sorted by relevance):
%[7]s

Select the most appropriate %[1]s code that best matches the %[2]s. Consider:
1. Specificity: Prefer more specific codes over general ones
2. Accuracy: The code should accurately represent the %[2]s
3. Clinical relevance: The code should be clinically meaningful
4. Relevance score: Higher scores indicate better matches, but use your medical expertise

Respond with a JSON object {"selected_id": "<id of the best match>"}.`

type selectionResponse struct {
	SelectedID string `json:"selected_id"`
}

// Filter discards candidates below the minimum relevance threshold,
// preserving rank order.
func Filter(candidates []Candidate, minScore float64) []Candidate {
	var kept []Candidate
	for _, c := range candidates {
		if c.Score > minScore {
			kept = append(kept, c)
		}
	}
	return kept
}

// Select resolves exactly one candidate from a non-empty, rank-ordered list
// (highest first). A single candidate, or exactly one candidate at the
// maximum attainable score, is selected deterministically with no model
// call. Otherwise a disambiguation model call chooses among the full ranked
// list; if the returned id matches no candidate, the highest-ranked
// candidate is used. Model-call failures propagate and abort the run.
func Select(ctx context.Context, c model.Client, d Disambiguation, ref Reference, candidates []Candidate, maxScore float64) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, fmt.Errorf("%w: no candidates to select from", ErrLookupFailed)
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	if top := atScore(candidates, maxScore); len(top) == 1 {
		return top[0], nil
	}

	selected, err := model.Invoke[selectionResponse](
		ctx, c,
		disambiguationSystem,
		disambiguationPrompt(d, ref, candidates),
	)
	if err != nil {
		return Candidate{}, fmt.Errorf("disambiguation: %w", err)
	}

	for _, candidate := range candidates {
		if candidate.ID == selected.SelectedID {
			return candidate, nil
		}
	}

	return candidates[0], nil
}

func atScore(candidates []Candidate, score float64) []Candidate {
	var matched []Candidate
	for _, c := range candidates {
		if c.Score == score {
			matched = append(matched, c)
		}
	}
	return matched
}

func disambiguationPrompt(d Disambiguation, ref Reference, candidates []Candidate) string {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = fmt.Sprintf("- ID: %s, Label: %s, Score: %.2f", c.ID, c.Label, c.Score)
	}

	return fmt.Sprintf(
		disambiguationTemplate,
		d.System,
		d.Kind,
		ref.Text,
		ref.Name,
		ref.Translated,
		ref.SearchTerm,
		strings.Join(lines, "\n"),
	)
}
