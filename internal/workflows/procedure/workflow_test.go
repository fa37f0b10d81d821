package procedure_test

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/internal/workflows"
	"github.com/aidh-ms/MedMiner/internal/workflows/procedure"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
	"github.com/aidh-ms/MedMiner/pkg/tables"
)

type scriptedModel struct {
	responses map[string]string
}

func (s *scriptedModel) Generate(_ context.Context, system, _ string) (string, error) {
	for fragment, response := range s.responses {
		if strings.Contains(system, fragment) {
			return response, nil
		}
	}
	return "", os.ErrNotExist
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const extraction = `{"data": [{
	"reference": "Appendektomie 2020",
	"name": "Appendektomie",
	"name_translated": "appendectomy",
	"search_term": "appendectomy",
	"year": 2020,
	"month": -1,
	"day": -1
}]}`

func TestProcedureWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/concepts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"items": [
			{"conceptId": "80146002", "fsn": {"term": "Appendectomy (procedure)"}, "definitionStatus": "FULLY_DEFINED"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	rt := &workflows.Runtime{
		Model:     &scriptedModel{responses: map[string]string{"extract all procedures": extraction}},
		Tables:    tables.New(&tables.Config{BaseDir: dir}, discard()),
		Snowstorm: terminology.NewSnowstormClient(&terminology.Config{SnowstormBaseURL: srv.URL, Timeout: "5s"}, discard()),
		Logger:    discard(),
	}

	wf, err := procedure.Definition().Build(rt)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	results, err := wf.RunMany(context.Background(), []pipeline.Letter{
		{PatientID: "p1", Text: "Z.n. Appendektomie 2020."},
	})
	if err != nil {
		t.Fatalf("RunMany error: %v", err)
	}

	f, err := os.Open(results[0].Path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	want := [][]string{
		{
			"reference", "name", "name_translated", "search_term",
			"year", "month", "day",
			"snomed_id", "snomed_fsn", "patient_id",
		},
		{
			"Appendektomie 2020", "Appendektomie", "appendectomy", "appendectomy",
			"2020", "-1", "-1",
			"80146002", "Appendectomy (procedure)", "p1",
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("output table mismatch (-want +got):\n%s", diff)
	}
}

func TestProcedureWorkflowRelaxesQueries(t *testing.T) {
	// the first two ECL levels return nothing; the single-word level hits
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ecl := r.URL.Query().Get("ecl")
		queries = append(queries, ecl)
		if len(queries) < 3 {
			w.Write([]byte(`{"items": []}`))
			return
		}
		w.Write([]byte(`{"items": [
			{"conceptId": "80146002", "fsn": {"term": "Appendectomy (procedure)"}, "definitionStatus": "FULLY_DEFINED"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	multiWord := `{"data": [{
		"reference": "laparoskopische Appendektomie",
		"name": "Appendektomie",
		"name_translated": "laparoscopic appendectomy",
		"search_term": "emergency laparoscopic appendectomy",
		"year": -1,
		"month": -1,
		"day": -1
	}]}`

	dir := t.TempDir()
	rt := &workflows.Runtime{
		Model:     &scriptedModel{responses: map[string]string{"extract all procedures": multiWord}},
		Tables:    tables.New(&tables.Config{BaseDir: dir}, discard()),
		Snowstorm: terminology.NewSnowstormClient(&terminology.Config{SnowstormBaseURL: srv.URL, Timeout: "5s"}, discard()),
		Logger:    discard(),
	}

	wf, err := procedure.Definition().Build(rt)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	results, err := wf.RunMany(context.Background(), []pipeline.Letter{{PatientID: "p1", Text: "letter"}})
	if err != nil {
		t.Fatalf("RunMany error: %v", err)
	}

	if len(queries) != 3 {
		t.Fatalf("Snowstorm received %d queries, want the full relaxation ladder", len(queries))
	}
	if !strings.Contains(queries[0], `"emergency laparoscopic appendectomy"`) {
		t.Errorf("first query is not the full term: %s", queries[0])
	}

	f, err := os.Open(results[0].Path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := records[1][7]; got != "80146002" {
		t.Errorf("snomed_id = %q, want 80146002 from the relaxed query", got)
	}
}
