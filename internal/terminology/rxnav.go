package terminology

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// RxNavMaxScore is the maximum attainable approximate-match score.
const RxNavMaxScore = 100

// RxNavClient queries the RxNav REST API for RxNorm identifiers and
// classification codes. RxNav requires no authentication.
type RxNavClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewRxNavClient creates an RxNav client from the given configuration.
func NewRxNavClient(cfg *Config, logger *slog.Logger) *RxNavClient {
	return &RxNavClient{
		baseURL: cfg.RxNavBaseURL,
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger.With("system", "rxnav"),
	}
}

// ExactMatch looks up RxNorm identifiers by exact name. Every exact match
// carries the maximum attainable score.
func (c *RxNavClient) ExactMatch(ctx context.Context, name string) ([]Candidate, error) {
	var payload struct {
		IDGroup struct {
			RxNormID []string `json:"rxnormId"`
		} `json:"idGroup"`
	}

	params := url.Values{"name": {name}}
	if err := getJSON(ctx, c.client, c.baseURL, "rxcui.json", params, nil, &payload); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(payload.IDGroup.RxNormID))
	for i, id := range payload.IDGroup.RxNormID {
		candidates[i] = Candidate{ID: id, Score: RxNavMaxScore, Label: name}
	}
	return candidates, nil
}

// ApproximateMatch performs a fuzzy term lookup, keeping only rank-1
// candidates. RxNav reports score and rank as strings.
func (c *RxNavClient) ApproximateMatch(ctx context.Context, term string) ([]Candidate, error) {
	var payload struct {
		ApproximateGroup struct {
			Candidate []struct {
				Rxcui string `json:"rxcui"`
				Name  string `json:"name"`
				Score string `json:"score"`
				Rank  string `json:"rank"`
			} `json:"candidate"`
		} `json:"approximateGroup"`
	}

	params := url.Values{"term": {term}}
	if err := getJSON(ctx, c.client, c.baseURL, "approximateTerm.json", params, nil, &payload); err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, cand := range payload.ApproximateGroup.Candidate {
		if cand.Rank != "1" {
			continue
		}

		score, err := strconv.ParseFloat(cand.Score, 64)
		if err != nil {
			score = 0
		}

		candidates = append(candidates, Candidate{ID: cand.Rxcui, Score: score, Label: cand.Name})
	}
	return candidates, nil
}

// Codes returns the classification codes of a concept filtered by property
// tag, e.g. property "ATC" for Anatomical Therapeutic Chemical codes.
func (c *RxNavClient) Codes(ctx context.Context, rxcui, property string) ([]string, error) {
	var payload struct {
		PropConceptGroup struct {
			PropConcept []struct {
				PropName  string `json:"propName"`
				PropValue string `json:"propValue"`
			} `json:"propConcept"`
		} `json:"propConceptGroup"`
	}

	path := fmt.Sprintf("rxcui/%s/allProperties.json", url.PathEscape(rxcui))
	params := url.Values{"prop": {"Codes"}}
	if err := getJSON(ctx, c.client, c.baseURL, path, params, nil, &payload); err != nil {
		return nil, err
	}

	var codes []string
	for _, prop := range payload.PropConceptGroup.PropConcept {
		if strings.EqualFold(prop.PropName, property) {
			codes = append(codes, prop.PropValue)
		}
	}
	return codes, nil
}
