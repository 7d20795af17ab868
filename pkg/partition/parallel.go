package partition

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// schedule calls fn for every node of the subtree after all of its
// callees. With more than one worker, nodes of equal height run
// concurrently; callees always finish before their caller starts.
func (in *instance) schedule(ctx context.Context, fn func(v tree.NodeID) error) error {
	if in.params.Workers <= 1 {
		for _, v := range in.tree.PostOrder(in.root) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(v); err != nil {
				return err
			}
		}
		return nil
	}
	for h, level := range in.tree.Heights(in.root) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(in.params.Workers)
		for _, v := range level {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return fn(v)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		in.log.Debug("level done", "height", h, "nodes", len(level))
	}
	return nil
}
