// Command bench generates a block-aligned file of a requested size and
// times sorting it, reporting throughput.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/csvquery/extsort/internal/block"
	"github.com/csvquery/extsort/internal/generator"
	"github.com/csvquery/extsort/internal/logging"
	"github.com/csvquery/extsort/internal/sortengine"
)

func main() {
	logging.Init(slog.LevelError)

	if len(os.Args) < 2 {
		fmt.Println("Usage: bench <size_mb>")
		return
	}
	sizeMB, err := strconv.Atoi(os.Args[1])
	if err != nil || sizeMB <= 0 {
		fmt.Fprintln(os.Stderr, "size_mb must be a positive integer")
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "extsort_bench")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	dataPath := filepath.Join(tmpDir, "data.bin")
	intDir := filepath.Join(tmpDir, "int")

	// Use a fixed run size of 64 blocks and round the file size down to a
	// whole number of runs (at least one), so the bench always hits a
	// clean split.
	totalBytes := int64(sizeMB) * 1024 * 1024
	totalBytes -= totalBytes % block.Size
	runBytes := int64(64 * block.Size)
	totalBytes -= totalBytes % runBytes
	if totalBytes < runBytes {
		totalBytes = runBytes
	}

	fmt.Printf("Generating %d MB (%d bytes, block-aligned)...\n", sizeMB, totalBytes)
	ctx := context.Background()
	if err := generator.Generate(ctx, generator.Config{Path: dataPath, Size: totalBytes}); err != nil {
		panic(err)
	}

	fmt.Println("Starting sort...")
	start := time.Now()
	cfg := sortengine.Config{
		FilePath:         dataPath,
		IntFileDir:       intDir,
		RunBytes:         runBytes,
		SplitConcurrency: 2,
	}
	if err := sortengine.Sort(ctx, cfg); err != nil {
		panic(err)
	}
	elapsed := time.Since(start)

	mbPerSec := float64(totalBytes) / 1024 / 1024 / elapsed.Seconds()
	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Throughput: %.2f MB/s\n", mbPerSec)
	fmt.Printf("Time:       %v\n", elapsed)
	fmt.Printf("--------------------------------------------------\n")
}
