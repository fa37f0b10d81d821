package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Runner executes one letter through an independent linear chain.
type Runner interface {
	Run(ctx context.Context, letter Letter) (*Result, error)
}

// Branch is one independent linear chain in a fan-out composition.
type Branch struct {
	Name   string
	Runner Runner
}

// BranchResult pairs a branch name with its run outcome.
type BranchResult struct {
	Name   string
	Result *Result
}

// FanOut runs every branch against the same input letter independently.
// Branches share only the letter value: each gets its own state and its own
// terminal, with no merge and no data flowing between chains. Failures are
// isolated per branch: one branch aborting never cancels another. Branch
// errors are joined into the returned error alongside the successful results.
// Branch completion order is not guaranteed.
func FanOut(ctx context.Context, branches []Branch, letter Letter) ([]BranchResult, error) {
	results := make([]*Result, len(branches))
	errs := make([]error, len(branches))

	var g errgroup.Group
	g.SetLimit(branchWorkers(len(branches)))

	for i, branch := range branches {
		g.Go(func() error {
			result, err := branch.Runner.Run(ctx, letter)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", branch.Name, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}

	g.Wait()

	var out []BranchResult
	for i, branch := range branches {
		if results[i] != nil {
			out = append(out, BranchResult{Name: branch.Name, Result: results[i]})
		}
	}

	return out, errors.Join(errs...)
}

func branchWorkers(count int) int {
	return max(min(runtime.NumCPU(), count), 1)
}
