package terminology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ICD-11 search parameters.
const (
	ICDMaxScore    = 1.0
	ICDMinScore    = 0.3
	icdSearchPath  = "icd/release/11/2022-02/mms/search"
	icdOAuth2Scope = "icdapi_access"
)

// ICDClient queries the WHO ICD-11 API. The API requires client-credentials
// token exchange; Enabled reports whether credentials are configured.
type ICDClient struct {
	baseURL string
	enabled bool
	client  *http.Client
	logger  *slog.Logger
}

// NewICDClient creates a WHO ICD client. When credentials are configured the
// underlying HTTP client transparently performs the token exchange on first
// use and refreshes thereafter.
func NewICDClient(cfg *Config, logger *slog.Logger) *ICDClient {
	c := &ICDClient{
		baseURL: cfg.ICDBaseURL,
		enabled: cfg.ICDClientID != "" && cfg.ICDClientSecret != "",
		logger:  logger.With("system", "icd"),
	}

	if !c.enabled {
		c.client = &http.Client{Timeout: cfg.TimeoutDuration()}
		return c
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ICDClientID,
		ClientSecret: cfg.ICDClientSecret,
		TokenURL:     cfg.ICDTokenURL,
		Scopes:       []string{icdOAuth2Scope},
	}

	c.client = creds.Client(context.Background())
	c.client.Timeout = cfg.TimeoutDuration()
	return c
}

// Enabled reports whether ICD lookups can be performed.
func (c *ICDClient) Enabled() bool {
	return c.enabled
}

// Search performs a flexisearch against the ICD-11 MMS linearization,
// returning candidates ordered by descending relevance score. Token-exchange
// failures are reported as ErrAuthentication.
func (c *ICDClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	var payload struct {
		DestinationEntities []struct {
			TheCode string  `json:"theCode"`
			Title   string  `json:"title"`
			Score   float64 `json:"score"`
		} `json:"destinationEntities"`
	}

	params := url.Values{
		"q":              {query},
		"useFlexisearch": {"true"},
	}
	headers := map[string]string{
		"Accept-Language": "en",
		"API-Version":     "v2",
	}

	if err := getJSON(ctx, c.client, c.baseURL, icdSearchPath, params, headers, &payload); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: token exchange: %w", ErrAuthentication, retrieveErr)
		}
		return nil, err
	}

	candidates := make([]Candidate, len(payload.DestinationEntities))
	for i, entity := range payload.DestinationEntities {
		candidates[i] = Candidate{ID: entity.TheCode, Score: entity.Score, Label: entity.Title}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}
