package sortengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/csvquery/extsort/internal/block"
	"github.com/csvquery/extsort/internal/logging"
	"github.com/csvquery/extsort/internal/permit"
	"github.com/csvquery/extsort/internal/xerrors"
)

// runHandle pairs a run's index with a reader positioned at its first
// unread block. It is owned exclusively by the merge stage once split
// completes.
type runHandle struct {
	index  int
	file   *os.File
	reader *bufio.Reader
}

func (h *runHandle) close() { _ = h.file.Close() }

// runPath returns the deterministic intermediate file path for run i.
func runPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%d.txt", i))
}

// writeRun materializes run i: it reads RunBytes bytes starting at
// i*RunBytes from the source, sorts them block-wise, and writes the
// sorted concatenation to the run's intermediate file. The permit is
// held only across the allocate/read/sort/write section, and is always
// released on the way out, including on error.
func writeRun(ctx context.Context, cfg Config, i int, pool *permit.Pool) (*runHandle, error) {
	path := runPath(cfg.IntFileDir, i)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, xerrors.IO(path, 0, fmt.Errorf("creating intermediate file: %w", err))
	}

	src, err := os.Open(cfg.FilePath)
	if err != nil {
		dst.Close()
		return nil, xerrors.IO(cfg.FilePath, 0, fmt.Errorf("opening source for run %d: %w", i, err))
	}
	offset := int64(i) * cfg.RunBytes
	if _, err := src.Seek(offset, io.SeekStart); err != nil {
		src.Close()
		dst.Close()
		return nil, xerrors.IO(cfg.FilePath, offset, fmt.Errorf("seeking to run %d: %w", i, err))
	}

	if err := pool.Take(ctx); err != nil {
		src.Close()
		dst.Close()
		return nil, err
	}
	defer pool.Put()

	buf := make([]byte, cfg.RunBytes)
	if _, err := io.ReadFull(src, buf); err != nil {
		src.Close()
		dst.Close()
		return nil, xerrors.IO(cfg.FilePath, offset, fmt.Errorf("reading run %d (%d bytes): %w", i, cfg.RunBytes, err))
	}
	src.Close()

	numBlocks := int(cfg.RunBytes / block.Size)
	blocks := make([]block.Block, numBlocks)
	for j := range blocks {
		copy(blocks[j][:], buf[j*block.Size:(j+1)*block.Size])
	}

	slices.SortFunc(blocks, func(a, b block.Block) int {
		return block.Compare(&a, &b)
	})

	if err := block.WriteAll(dst, blocks); err != nil {
		dst.Close()
		return nil, xerrors.IO(path, 0, fmt.Errorf("writing run %d: %w", i, err))
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return nil, xerrors.IO(path, 0, fmt.Errorf("flushing run %d: %w", i, err))
	}
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		dst.Close()
		return nil, xerrors.IO(path, 0, fmt.Errorf("rewinding run %d: %w", i, err))
	}

	logging.Default().Debug("run written", "run", i, "path", path, "blocks", numBlocks)

	return &runHandle{
		index:  i,
		file:   dst,
		reader: bufio.NewReaderSize(dst, 256*1024),
	}, nil
}
