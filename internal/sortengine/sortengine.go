package sortengine

import (
	"context"
	"time"

	"github.com/csvquery/extsort/internal/logging"
)

// Sort performs the full external sort described by cfg: it splits the
// source into sorted run files under cfg.IntFileDir, then k-way merges
// those runs back into cfg.FilePath in place. Run files are left on
// disk after a successful merge; cleanup is the operator's concern.
func Sort(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	start := time.Now()

	runs, err := split(ctx, cfg)
	if err != nil {
		return err
	}

	if err := merge(ctx, cfg.FilePath, runs); err != nil {
		return err
	}

	logging.Default().Info("sort complete", "file", cfg.FilePath, "runs", len(runs), "elapsed", time.Since(start).String())
	return nil
}
