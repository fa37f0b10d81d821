package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const keyTrace = "trace"

// traceNode appends its name to a trace string in state, recording
// execution order.
func traceNode(name string) pipeline.Node {
	return pipeline.NewNode(name, func(_ context.Context, s state.State) (state.State, error) {
		trace := ""
		if v, ok := s.Get(keyTrace); ok {
			trace = v.(string) + ","
		}
		return s.Set(keyTrace, trace+name), nil
	})
}

func terminalNode(path string) pipeline.Node {
	return pipeline.NewNode("terminal", func(_ context.Context, s state.State) (state.State, error) {
		return s.Set(pipeline.KeyPath, path), nil
	})
}

func failingNode(name string, err error) pipeline.Node {
	return pipeline.NewNode(name, func(_ context.Context, s state.State) (state.State, error) {
		return s, err
	})
}

func TestBuildRequiresNodes(t *testing.T) {
	if _, err := pipeline.Build("empty", nil, discard()); !errors.Is(err, pipeline.ErrBuildFailed) {
		t.Fatalf("Build(nil nodes) error = %v, want ErrBuildFailed", err)
	}
}

func TestRunExecutesNodesInOrder(t *testing.T) {
	var trace string
	capture := pipeline.NewNode("capture", func(_ context.Context, s state.State) (state.State, error) {
		if v, ok := s.Get(keyTrace); ok {
			trace = v.(string)
		}
		return s.Set(pipeline.KeyPath, "out.csv"), nil
	})

	p, err := pipeline.Build("ordered", []pipeline.Node{
		traceNode("first"), traceNode("second"), traceNode("third"), capture,
	}, discard())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	result, err := p.Run(context.Background(), pipeline.Letter{PatientID: "p1", Text: "letter"})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if trace != "first,second,third" {
		t.Errorf("execution order = %q, want first,second,third", trace)
	}
	if result.PatientID != "p1" || result.Path != "out.csv" {
		t.Errorf("result = %+v", result)
	}
}

func TestRunSeedsLetterState(t *testing.T) {
	var patientID, text string
	inspect := pipeline.NewNode("inspect", func(_ context.Context, s state.State) (state.State, error) {
		var err error
		if patientID, err = pipeline.PatientID(s); err != nil {
			return s, err
		}
		if text, err = pipeline.LetterText(s); err != nil {
			return s, err
		}
		return s.Set(pipeline.KeyPath, "out.csv"), nil
	})

	p, err := pipeline.Build("seeded", []pipeline.Node{inspect}, discard())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if _, err := p.Run(context.Background(), pipeline.Letter{PatientID: "p7", Text: "Dear colleague"}); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if patientID != "p7" || text != "Dear colleague" {
		t.Errorf("seeded state = (%q, %q), want (p7, Dear colleague)", patientID, text)
	}
}

func TestRunAbortsOnNodeError(t *testing.T) {
	boom := errors.New("lookup exploded")
	ran := false
	after := pipeline.NewNode("after", func(_ context.Context, s state.State) (state.State, error) {
		ran = true
		return s.Set(pipeline.KeyPath, "out.csv"), nil
	})

	p, err := pipeline.Build("aborting", []pipeline.Node{
		traceNode("first"), failingNode("failing", boom), after,
	}, discard())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	result, err := p.Run(context.Background(), pipeline.Letter{PatientID: "p1", Text: "letter"})
	if err == nil {
		t.Fatalf("Run = %+v, want abort", result)
	}
	if ran {
		t.Error("node after the failure ran; abort must stop the chain")
	}
}

func TestRunManyContinuesPastFailures(t *testing.T) {
	boom := errors.New("bad letter")
	flaky := pipeline.NewNode("flaky", func(_ context.Context, s state.State) (state.State, error) {
		id, err := pipeline.PatientID(s)
		if err != nil {
			return s, err
		}
		if id == "p2" {
			return s, boom
		}
		return s.Set(pipeline.KeyPath, id+".csv"), nil
	})

	p, err := pipeline.Build("flaky", []pipeline.Node{flaky}, discard())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	letters := []pipeline.Letter{
		{PatientID: "p1", Text: "a"},
		{PatientID: "p2", Text: "b"},
		{PatientID: "p3", Text: "c"},
	}

	results, err := p.RunMany(context.Background(), letters)
	if err == nil {
		t.Fatal("RunMany = nil error, want joined failure for p2")
	}
	if !strings.Contains(err.Error(), "p2") {
		t.Errorf("error does not name the failed letter: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].PatientID != "p1" || results[1].PatientID != "p3" {
		t.Errorf("results = %+v, want p1 then p3", results)
	}
}

type stubRunner struct {
	path string
	err  error

	mu      sync.Mutex
	letters []pipeline.Letter
}

func (r *stubRunner) Run(_ context.Context, letter pipeline.Letter) (*pipeline.Result, error) {
	r.mu.Lock()
	r.letters = append(r.letters, letter)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.Result{PatientID: letter.PatientID, Path: r.path}, nil
}

func TestFanOutRunsEveryBranch(t *testing.T) {
	a := &stubRunner{path: "a.csv"}
	b := &stubRunner{path: "b.csv"}

	letter := pipeline.Letter{PatientID: "p1", Text: "letter"}
	results, err := pipeline.FanOut(context.Background(), []pipeline.Branch{
		{Name: "alpha", Runner: a},
		{Name: "beta", Runner: b},
	}, letter)
	if err != nil {
		t.Fatalf("FanOut error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d branch results, want 2", len(results))
	}
	if results[0].Name != "alpha" || results[1].Name != "beta" {
		t.Errorf("branch order in results = %s, %s", results[0].Name, results[1].Name)
	}
	if len(a.letters) != 1 || len(b.letters) != 1 {
		t.Errorf("branch invocations = %d, %d, want one each", len(a.letters), len(b.letters))
	}
}

func TestFanOutIsolatesFailures(t *testing.T) {
	boom := errors.New("branch exploded")
	good := &stubRunner{path: "good.csv"}
	bad := &stubRunner{err: boom}

	results, err := pipeline.FanOut(context.Background(), []pipeline.Branch{
		{Name: "bad", Runner: bad},
		{Name: "good", Runner: good},
	}, pipeline.Letter{PatientID: "p1", Text: "letter"})

	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped branch failure", err)
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error does not name the failed branch: %v", err)
	}
	if len(results) != 1 || results[0].Name != "good" {
		t.Fatalf("results = %+v, want the surviving branch only", results)
	}
	if len(good.letters) != 1 {
		t.Error("surviving branch did not run despite sibling failure")
	}
}

func TestFanOutManyBranches(t *testing.T) {
	// more branches than CPUs still runs them all
	var branches []pipeline.Branch
	runners := make([]*stubRunner, 64)
	for i := range runners {
		runners[i] = &stubRunner{path: fmt.Sprintf("%d.csv", i)}
		branches = append(branches, pipeline.Branch{Name: fmt.Sprintf("b%d", i), Runner: runners[i]})
	}

	results, err := pipeline.FanOut(context.Background(), branches, pipeline.Letter{PatientID: "p1"})
	if err != nil {
		t.Fatalf("FanOut error: %v", err)
	}
	if len(results) != len(branches) {
		t.Fatalf("got %d results, want %d", len(results), len(branches))
	}
}
