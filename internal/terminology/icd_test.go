package terminology_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aidh-ms/MedMiner/internal/terminology"
)

func TestICDEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  terminology.Config
		want bool
	}{
		{name: "no credentials", cfg: terminology.Config{Timeout: "5s"}, want: false},
		{name: "id only", cfg: terminology.Config{ICDClientID: "id", Timeout: "5s"}, want: false},
		{name: "full credentials", cfg: terminology.Config{ICDClientID: "id", ICDClientSecret: "secret", Timeout: "5s"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := terminology.NewICDClient(&tt.cfg, discard())
			if got := client.Enabled(); got != tt.want {
				t.Errorf("Enabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestICDSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/connect/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("/icd/release/11/2022-02/mms/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("API-Version"); got != "v2" {
			t.Errorf("API-Version = %q", got)
		}
		if got := r.URL.Query().Get("useFlexisearch"); got != "true" {
			t.Errorf("useFlexisearch = %q", got)
		}
		w.Write([]byte(`{"destinationEntities": [
			{"theCode": "BA00", "title": "Essential hypertension", "score": 0.55},
			{"theCode": "BA01", "title": "Hypertensive heart disease", "score": 0.91}
		]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &terminology.Config{
		ICDBaseURL:      srv.URL,
		ICDTokenURL:     srv.URL + "/connect/token",
		ICDClientID:     "id",
		ICDClientSecret: "secret",
		Timeout:         "5s",
	}
	client := terminology.NewICDClient(cfg, discard())

	got, err := client.Search(context.Background(), "hypertension")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	// candidates come back ordered by descending score
	want := []terminology.Candidate{
		{ID: "BA01", Score: 0.91, Label: "Hypertensive heart disease"},
		{ID: "BA00", Score: 0.55, Label: "Essential hypertension"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestICDSearchTokenExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid_client"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := &terminology.Config{
		ICDBaseURL:      srv.URL,
		ICDTokenURL:     srv.URL + "/connect/token",
		ICDClientID:     "id",
		ICDClientSecret: "wrong",
		Timeout:         "5s",
	}
	client := terminology.NewICDClient(cfg, discard())

	_, err := client.Search(context.Background(), "hypertension")
	if !errors.Is(err, terminology.ErrAuthentication) {
		t.Fatalf("error = %v, want ErrAuthentication", err)
	}
}
