package sortengine

import (
	"context"
	"fmt"
	"os"

	"github.com/creachadair/taskgroup"

	"github.com/csvquery/extsort/internal/block"
	"github.com/csvquery/extsort/internal/logging"
	"github.com/csvquery/extsort/internal/permit"
	"github.com/csvquery/extsort/internal/xerrors"
)

// split partitions the source file named in cfg into run files and
// returns a handle per run, indexed the same way as the runs themselves.
// Spawning one task per run is intentional even though only
// SplitConcurrency of them may be inside the heavy section at once: task
// creation is cheap, and the permit pool is the only admission-control
// knob (see internal/permit).
func split(ctx context.Context, cfg Config) ([]*runHandle, error) {
	info, err := os.Stat(cfg.FilePath)
	if err != nil {
		return nil, xerrors.Input(cfg.FilePath, fmt.Errorf("opening source file: %w", err))
	}
	size := info.Size()
	logging.Default().Info("source file size", "path", cfg.FilePath, "bytes", size)

	if _, aligned := block.Count(size); !aligned {
		return nil, xerrors.Input(cfg.FilePath, fmt.Errorf("size %d is not a multiple of block size %d", size, block.Size))
	}
	if cfg.RunBytes%block.Size != 0 {
		return nil, xerrors.Input(cfg.FilePath, fmt.Errorf("run size %d is not a multiple of block size %d", cfg.RunBytes, block.Size))
	}
	if size%cfg.RunBytes != 0 {
		return nil, xerrors.Input(cfg.FilePath, fmt.Errorf("size %d is not a multiple of run size %d: residual-byte runs are rejected", size, cfg.RunBytes))
	}

	numRuns := int(size / cfg.RunBytes)
	if numRuns == 0 {
		return nil, xerrors.Input(cfg.FilePath, fmt.Errorf("file is smaller than one run (%d bytes)", cfg.RunBytes))
	}
	logging.Default().Info("splitting into runs", "runs", numRuns, "run_bytes", cfg.RunBytes, "split_concurrency", cfg.SplitConcurrency)

	if err := os.MkdirAll(cfg.IntFileDir, 0755); err != nil {
		return nil, xerrors.IO(cfg.IntFileDir, 0, fmt.Errorf("creating intermediate directory: %w", err))
	}

	pool := permit.New(cfg.SplitConcurrency)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g := taskgroup.New(cancel)

	handles := make([]*runHandle, numRuns)
	for i := range numRuns {
		g.Go(func() error {
			h, err := writeRun(ctx, cfg, i, pool)
			if err != nil {
				return xerrors.Worker(i, err)
			}
			handles[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, h := range handles {
			if h != nil {
				h.close()
			}
		}
		return nil, err
	}
	return handles, nil
}
