package monthly

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/trade-cli/internal/config"
)

// NormalizeAll normalizes a batch of files across a bounded worker pool, one
// worker per available core minus one. Workers share no mutable state and
// never fail the group: each file's outcome lands in its FileResult, so
// skipped and failed files are observable instead of silently vanishing.
// Results come back in input order.
func NormalizeAll(ctx context.Context, paths []string, v config.Variable, p Params) []FileResult {
	results := make([]FileResult, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(max(1, runtime.NumCPU()-1))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = Normalize(path, v, p)
			return nil
		})
	}
	_ = g.Wait()

	var ok, skipped, failed int
	for _, r := range results {
		switch {
		case r.OK():
			ok++
		case r.Err != nil:
			failed++
			zap.L().Warn("file failed to read, excluded from merge",
				zap.String("path", r.Path),
				zap.Error(r.Err),
			)
		default:
			skipped++
			zap.L().Warn("file skipped, excluded from merge",
				zap.String("path", r.Path),
				zap.String("reason", r.SkipReason),
			)
		}
	}
	zap.L().Info("normalized batch",
		zap.String("variable", v.Name),
		zap.Int("files", len(paths)),
		zap.Int("ok", ok),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return results
}
