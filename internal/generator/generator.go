// Package generator fills a file with random alphanumeric bytes up to a
// target size, for building test inputs for the sorter. It mirrors the
// worker/permit/writer split of this system's original generator: a
// pool of workers each produce up to max_mem/workers bytes, gated by a
// permit pool of the same size, and a single writer goroutine drains a
// channel of produced chunks and appends them to the destination file.
package generator

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/creachadair/taskgroup"

	"github.com/csvquery/extsort/internal/block"
	"github.com/csvquery/extsort/internal/logging"
	"github.com/csvquery/extsort/internal/permit"
	"github.com/csvquery/extsort/internal/xerrors"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Config holds the generator's parameters.
type Config struct {
	Path   string
	Size   int64
	MaxMem int64
}

// DefaultMaxMem is the default memory budget for a generate call.
const DefaultMaxMem = 2 * block.OneGiB

func (c Config) withDefaults() Config {
	if c.MaxMem <= 0 {
		c.MaxMem = DefaultMaxMem
	}
	return c
}

// Generate writes cfg.Size random alphanumeric bytes to cfg.Path in
// chunks of cfg.MaxMem/NumCPU bytes. The permit pool bounds how many
// chunks are being filled at once to NumCPU; a filled chunk releases its
// permit once it is queued for the writer, and up to NumCPU chunks may
// wait in that queue, so peak memory can exceed cfg.MaxMem.
func Generate(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	if cfg.MaxMem < block.Size {
		return fmt.Errorf("max allowed memory must be at least %d bytes", block.Size)
	}
	if cfg.Size <= 0 {
		return fmt.Errorf("size must be positive")
	}

	f, err := os.Create(cfg.Path)
	if err != nil {
		return xerrors.IO(cfg.Path, 0, fmt.Errorf("creating file: %w", err))
	}
	defer f.Close()

	workers := runtime.NumCPU()
	memPerWorker := cfg.MaxMem / int64(workers)
	if memPerWorker < 1 {
		memPerWorker = 1
	}

	pool := permit.New(workers)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g := taskgroup.New(cancel)

	chunks := make(chan []byte, workers)
	hasher := xxhash.New()
	dest := io.MultiWriter(f, hasher)
	resultCh := make(chan error, 1)

	go func() {
		var firstErr error
		for c := range chunks {
			if firstErr != nil {
				continue // drain without writing once a write has failed
			}
			if _, err := dest.Write(c); err != nil {
				firstErr = xerrors.IO(cfg.Path, 0, fmt.Errorf("writing generated chunk: %w", err))
				cancel()
			}
		}
		resultCh <- firstErr
	}()

	remaining := cfg.Size
	workerSeed := time.Now().UnixNano()
	for remaining > 0 {
		n := memPerWorker
		if n > remaining {
			n = remaining
		}
		remaining -= n

		seed := workerSeed
		workerSeed++
		g.Go(func() error {
			if err := pool.Take(ctx); err != nil {
				return err
			}
			defer pool.Put()

			buf := randomAlphanumeric(n, seed)
			select {
			case chunks <- buf:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	genErr := g.Wait()
	close(chunks)
	writeErr := <-resultCh

	if genErr != nil {
		return genErr
	}
	if writeErr != nil {
		return writeErr
	}

	logging.Default().Info("file generated", "path", cfg.Path, "bytes", cfg.Size, "xxhash", fmt.Sprintf("%016x", hasher.Sum64()))
	return nil
}

// randomAlphanumeric returns n random bytes drawn from the alphanumeric
// alphabet. Each call uses its own source so concurrent workers never
// contend on a shared lock — the output is not required to be
// cryptographically random, only a reasonable smoke-test fixture.
func randomAlphanumeric(n int64, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	for i := range out {
		out[i] = alphanumeric[rng.Intn(len(alphanumeric))]
	}
	return out
}
