package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// getJSON performs a GET against base+path with query parameters and decodes
// the JSON response into v. Non-2xx statuses and transport errors are both
// reported as ErrLookupFailed; callers treat them as "no candidates this
// stage" rather than aborting the run.
func getJSON(ctx context.Context, client *http.Client, base, path string, params url.Values, headers map[string]string, v any) error {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %s returned %d", ErrAuthentication, u, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s returned %d", ErrLookupFailed, u, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrLookupFailed, err)
	}

	return nil
}
