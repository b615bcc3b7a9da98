package job

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ItemResult is one slot of a batch outcome, indexed by input position.
type ItemResult struct {
	OriginalName string
	Artifact     *Artifact
	Err          error
}

// RunBatch converts every input independently. Items run in parallel up to
// the worker bound, a per-item failure never aborts its siblings, and the
// returned slice preserves input order regardless of completion order.
func (r *Runner) RunBatch(ctx context.Context, inputs []InputImage, req Request) []ItemResult {
	results := make([]ItemResult, len(inputs))

	g := new(errgroup.Group)
	g.SetLimit(r.workerLimit())

	for i, in := range inputs {
		results[i].OriginalName = in.OriginalName
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				// Client went away; abandon items that have not started.
				results[i].Err = &Error{Kind: TranscodeFailed, Err: err}
				return nil
			}
			art, err := r.Run(ctx, in, req)
			if err != nil {
				results[i].Err = err
			} else {
				results[i].Artifact = &art
			}
			return nil
		})
	}
	g.Wait()

	return results
}

func (r *Runner) workerLimit() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}
