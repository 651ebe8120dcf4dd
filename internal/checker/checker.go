// Package checker verifies that a file is block-monotone: reading it as
// a sequence of fixed-size blocks, each block must be unsigned-byte
// greater than or equal to its predecessor. It is the external
// counterpart to the sorter — nothing it reports feeds back into sort.
package checker

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/csvquery/extsort/internal/block"
	"github.com/csvquery/extsort/internal/bloomfilter"
	"github.com/csvquery/extsort/internal/logging"
)

// Result summarizes one checked file.
type Result struct {
	Path           string
	Blocks         int64
	DistinctApprox int64
}

// CheckFile reads path block by block and fails on the first strict
// inversion. Equal adjacent blocks are logged at debug level but do not
// fail the check, matching the "optionally logs equal-adjacent blocks"
// behavior.
func CheckFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size()%block.Size != 0 {
		return Result{}, fmt.Errorf("%s: size %d is not a multiple of block size %d", path, info.Size(), block.Size)
	}

	logging.Default().Debug("checking file", "path", path)

	reader := bufio.NewReaderSize(f, 256*1024)

	var last block.Block
	if _, err := block.ReadOne(reader, &last); err != nil {
		if err == io.EOF {
			return Result{Path: path}, nil
		}
		return Result{}, fmt.Errorf("%s: reading first block: %w", path, err)
	}

	expectedBlocks := int(info.Size() / block.Size)
	filter := bloomfilter.New(expectedBlocks, 0.01)
	filter.Add(last[:])

	var blockIdx int64 = 1
	var cur block.Block
	for {
		if _, err := block.ReadOne(reader, &cur); err != nil {
			if err == io.EOF {
				break
			}
			return Result{}, fmt.Errorf("%s: reading block %d: %w", path, blockIdx, err)
		}

		cmp := block.Compare(&cur, &last)
		if cmp < 0 {
			return Result{}, fmt.Errorf("%s: block %d is less than the previous one", path, blockIdx)
		}
		if cmp == 0 {
			logging.Default().Debug("equal adjacent blocks", "path", path, "block", blockIdx)
		}
		if !filter.MightContain(cur[:]) {
			filter.Add(cur[:])
		}

		last = cur
		blockIdx++
	}

	return Result{Path: path, Blocks: blockIdx, DistinctApprox: int64(filter.Count())}, nil
}

// CheckDir checks every regular file directly inside dir.
func CheckDir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading intermediate directory %s: %w", dir, err)
	}

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		r, err := CheckFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Check verifies filePath, and, if intFileDir exists, every file inside
// it too — matching the check subcommand's contract exactly.
func Check(filePath, intFileDir string) ([]Result, error) {
	var all []Result

	if intFileDir != "" {
		if _, err := os.Stat(intFileDir); err == nil {
			dirResults, err := CheckDir(intFileDir)
			if err != nil {
				return nil, err
			}
			all = append(all, dirResults...)
		} else {
			logging.Default().Info("intermediate files dir not present, skipping", "dir", intFileDir)
		}
	}

	fileResult, err := CheckFile(filePath)
	if err != nil {
		return nil, err
	}
	all = append(all, fileResult)

	return all, nil
}
