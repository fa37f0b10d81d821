package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// Node is one unit of a pipeline: a stable name plus the state node the
// engine schedules. Names within one pipeline must be unique.
type Node struct {
	Name string
	Node state.StateNode
}

// NewNode wraps a state-transition function as a named pipeline node.
func NewNode(name string, fn func(ctx context.Context, s state.State) (state.State, error)) Node {
	return Node{Name: name, Node: state.NewFunctionNode(fn)}
}

// Result is the outcome of running one letter through a pipeline.
type Result struct {
	PatientID string
	Path      string
}

// Pipeline is an executable linear node sequence for one entity domain.
type Pipeline struct {
	name   string
	graph  state.StateGraph
	logger *slog.Logger
}

// Build composes the ordered node list into an executable pipeline. Nodes
// run strictly in the given order, each receiving the state merged from all
// prior nodes; the engine never skips or retries a node.
func Build(name string, nodes []Node, logger *slog.Logger) (*Pipeline, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrBuildFailed)
	}

	cfg := gaoconfig.DefaultGraphConfig(name)
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.Name, n.Node); err != nil {
			return nil, fmt.Errorf("%w: add node %s: %w", ErrBuildFailed, n.Name, err)
		}
	}

	for i := range nodes[:len(nodes)-1] {
		if err := graph.AddEdge(nodes[i].Name, nodes[i+1].Name, nil); err != nil {
			return nil, fmt.Errorf("%w: edge %s -> %s: %w", ErrBuildFailed, nodes[i].Name, nodes[i+1].Name, err)
		}
	}

	if err := graph.SetEntryPoint(nodes[0].Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	if err := graph.SetExitPoint(nodes[len(nodes)-1].Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	return &Pipeline{
		name:   name,
		graph:  graph,
		logger: logger.With("pipeline", name),
	}, nil
}

// Name returns the pipeline's registered name.
func (p *Pipeline) Name() string {
	return p.name
}

// Run executes the pipeline for a single letter. Any node error aborts the
// run; partial state is discarded, never partially persisted.
func (p *Pipeline) Run(ctx context.Context, letter Letter) (*Result, error) {
	runID := uuid.NewString()
	p.logger.InfoContext(
		ctx, "run started",
		"run_id", runID,
		"patient_id", letter.PatientID,
	)

	finalState, err := p.graph.Execute(ctx, NewState(letter))
	if err != nil {
		p.logger.ErrorContext(
			ctx, "run aborted",
			"run_id", runID,
			"patient_id", letter.PatientID,
			"error", err,
		)
		return nil, fmt.Errorf("run %s: %w", p.name, err)
	}

	path, err := OutputPath(finalState)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", p.name, err)
	}

	p.logger.InfoContext(
		ctx, "run complete",
		"run_id", runID,
		"patient_id", letter.PatientID,
		"path", path,
	)

	return &Result{PatientID: letter.PatientID, Path: path}, nil
}

// RunMany executes the pipeline for each letter sequentially. One letter's
// abort does not stop processing of the remaining letters; failures are
// joined into the returned error alongside the successful results.
func (p *Pipeline) RunMany(ctx context.Context, letters []Letter) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)

	for _, letter := range letters {
		result, err := p.Run(ctx, letter)
		if err != nil {
			errs = append(errs, fmt.Errorf("letter %s: %w", letter.PatientID, err))
			continue
		}
		results = append(results, *result)
	}

	return results, errors.Join(errs...)
}
