package sortengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/csvquery/extsort/internal/block"
	"github.com/csvquery/extsort/internal/logging"
	"github.com/csvquery/extsort/internal/xerrors"
)

// mergeEntry is one live run's current head block, ordered by block
// ascending so that a manual array-backed min-heap (below) pops the
// globally smallest block first. runIdx is carried along purely to
// know which run to read the next block from; it never breaks ties.
type mergeEntry struct {
	runIdx int
	blk    block.Block
}

func (e mergeEntry) less(o mergeEntry) bool {
	return block.Less(&e.blk, &o.blk)
}

// minHeap is a manual binary heap over mergeEntry. A manual slice-backed
// heap avoids the interface{} boxing container/heap would impose on
// every push/pop of a 4096-byte value.
type minHeap []mergeEntry

func (h *minHeap) push(e mergeEntry) {
	*h = append(*h, e)
	h.up(len(*h) - 1)
}

func (h *minHeap) pop() mergeEntry {
	old := *h
	n := len(old)
	top := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]
	h.down(0)
	return top
}

func (h minHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h[j].less(h[i]) {
			break
		}
		h[i], h[j] = h[j], h[i]
		j = i
	}
}

func (h minHeap) down(i int) {
	n := len(h)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		j := left
		if right := left + 1; right < n && h[right].less(h[left]) {
			j = right
		}
		if !h[j].less(h[i]) {
			break
		}
		h[i], h[j] = h[j], h[i]
		i = j
	}
}

// merge performs the k-way merge of runs into destPath, overwriting it
// in place. It owns the run-reader table exclusively: nothing else
// touches the handles once merge has started.
func merge(ctx context.Context, destPath string, runs []*runHandle) (err error) {
	table := make(map[int]*runHandle, len(runs))
	for _, rh := range runs {
		table[rh.index] = rh
	}
	defer func() {
		for _, rh := range table {
			rh.close()
		}
	}()

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return xerrors.IO(destPath, 0, fmt.Errorf("opening destination for merge: %w", err))
	}
	defer dest.Close()

	writer := bufio.NewWriterSize(dest, 256*block.Size)

	logging.Default().Info("populating merge heap", "runs", len(runs))
	var h minHeap
	for _, rh := range runs {
		var b block.Block
		n, rerr := block.ReadOne(rh.reader, &b)
		if rerr == io.EOF || n == 0 {
			delete(table, rh.index)
			continue
		}
		if rerr != nil {
			return xerrors.Corruption(fmt.Sprintf("run %d", rh.index), rerr)
		}
		h.push(mergeEntry{runIdx: rh.index, blk: b})
		logging.Default().Debug("added to heap", "run", rh.index)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for len(h) > 0 {
		entry := h.pop()
		if err := block.WriteAll(writer, []block.Block{entry.blk}); err != nil {
			return xerrors.IO(destPath, 0, fmt.Errorf("writing merged block: %w", err))
		}

		rh, ok := table[entry.runIdx]
		if !ok {
			continue
		}
		var next block.Block
		n, rerr := block.ReadOne(rh.reader, &next)
		if rerr == io.EOF || n == 0 {
			delete(table, entry.runIdx)
			continue
		}
		if rerr != nil {
			return xerrors.Corruption(fmt.Sprintf("run %d", entry.runIdx), rerr)
		}
		h.push(mergeEntry{runIdx: entry.runIdx, blk: next})
	}

	if err := writer.Flush(); err != nil {
		return xerrors.IO(destPath, 0, fmt.Errorf("flushing destination: %w", err))
	}
	return nil
}
