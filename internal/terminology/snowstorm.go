package terminology

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// snomedProcedureRoot constrains ECL queries to descendants of the SNOMED CT
// procedure hierarchy.
const snomedProcedureRoot = "< 71388002|Procedure|"

// SnowstormClient queries a SNOMED CT Snowstorm terminology server. The
// server is optional: an empty base URL disables lookups entirely.
type SnowstormClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewSnowstormClient creates a Snowstorm client from the given configuration.
func NewSnowstormClient(cfg *Config, logger *slog.Logger) *SnowstormClient {
	return &SnowstormClient{
		baseURL: cfg.SnowstormBaseURL,
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "snowstorm"),
	}
}

// Enabled reports whether a Snowstorm base URL is configured.
func (c *SnowstormClient) Enabled() bool {
	return c.baseURL != ""
}

// SearchConcepts runs one ECL concept query, keeping fully defined and
// primitive concepts and ordering candidates by ascending FSN length so the
// most concise names rank first.
func (c *SnowstormClient) SearchConcepts(ctx context.Context, ecl string) ([]Candidate, error) {
	var payload struct {
		Items []struct {
			ConceptID string `json:"conceptId"`
			FSN       struct {
				Term string `json:"term"`
			} `json:"fsn"`
			DefinitionStatus string `json:"definitionStatus"`
		} `json:"items"`
	}

	params := url.Values{
		"activeFilter": {"true"},
		"termActive":   {"true"},
		"ecl":          {ecl},
	}

	if err := getJSON(ctx, c.client, c.baseURL, "concepts", params, nil, &payload); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, item := range payload.Items {
		if item.DefinitionStatus != "FULLY_DEFINED" && item.DefinitionStatus != "PRIMITIVE" {
			continue
		}
		candidates = append(candidates, Candidate{ID: item.ConceptID, Label: item.FSN.Term})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Label) < len(candidates[j].Label)
	})
	return candidates, nil
}

// ECLQueries builds procedure ECL queries with progressively relaxed term
// constraints: the full search term first, then word-subset combinations
// from largest to smallest, finally every word individually. Callers query
// each level in order and stop at the first that yields candidates.
func ECLQueries(term string) []string {
	queries := []string{
		fmt.Sprintf(`%s {{ term = "%s"}}`, snomedProcedureRoot, term),
	}

	words := strings.Fields(term)
	if len(words) <= 1 {
		return queries
	}

	for size := len(words) - 1; size >= 2; size-- {
		var filters []string
		for _, subset := range combinations(words, size) {
			filters = append(filters, fmt.Sprintf(`term = ("%s")`, strings.Join(subset, " ")))
		}
		queries = append(queries, fmt.Sprintf(`%s {{ %s }}`, snomedProcedureRoot, strings.Join(filters, ", ")))
	}

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	queries = append(queries, fmt.Sprintf(`%s {{ term = (%s)}}`, snomedProcedureRoot, strings.Join(quoted, " ")))

	return queries
}

// combinations returns all k-element subsets of words in positional order.
func combinations(words []string, k int) [][]string {
	if k <= 0 || k > len(words) {
		return nil
	}

	var (
		result  [][]string
		current = make([]string, 0, k)
	)

	var walk func(start int)
	walk = func(start int) {
		if len(current) == k {
			result = append(result, append([]string{}, current...))
			return
		}
		for i := start; i < len(words); i++ {
			current = append(current, words[i])
			walk(i + 1)
			current = current[:len(current)-1]
		}
	}

	walk(0)
	return result
}
