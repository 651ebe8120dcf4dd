package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/csvquery/extsort/internal/block"
)

func TestGenerateProducesExactSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	const size = int64(17 * 1024)
	err := Generate(context.Background(), Config{Path: path, Size: size, MaxMem: 4096})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != size {
		t.Fatalf("generated file is %d bytes, want %d", info.Size(), size)
	}
}

func TestGenerateOutputIsAlphanumeric(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	if err := Generate(context.Background(), Config{Path: path, Size: 4096, MaxMem: 4096}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range data {
		isAlnum := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
		if !isAlnum {
			t.Fatalf("byte %d (%q) is not alphanumeric", i, b)
		}
	}
}

func TestGenerateRejectsNonPositiveSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	if err := Generate(context.Background(), Config{Path: path, Size: 0}); err == nil {
		t.Fatal("expected an error for a zero size")
	}
}

func TestGenerateRejectsUndersizedMaxMem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	err := Generate(context.Background(), Config{Path: path, Size: block.Size, MaxMem: 10})
	if err == nil {
		t.Fatal("expected an error when max-mem is smaller than a single block")
	}
}

func TestGenerateDefaultsMaxMem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	// MaxMem left at zero should fall back to DefaultMaxMem rather than error.
	if err := Generate(context.Background(), Config{Path: path, Size: 4096}); err != nil {
		t.Fatalf("Generate with default MaxMem: %v", err)
	}
}
