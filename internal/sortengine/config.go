// Package sortengine implements the memory-bounded external sort: the
// split phase partitions a block-aligned file into sorted run files, and
// the merge phase performs a k-way merge of those runs back into the
// original file in place.
package sortengine

import "github.com/csvquery/extsort/internal/block"

// Default configuration values, matching the sort subcommand's flags.
const (
	DefaultRunBytes         = 2 * block.OneGiB
	DefaultIntFileDir       = "./int"
	DefaultSplitConcurrency = 2
)

// Config holds everything the sort pipeline needs for a single run.
type Config struct {
	// FilePath is the source file, sorted in place.
	FilePath string
	// IntFileDir is the directory run files are written to.
	IntFileDir string
	// RunBytes is the size of each run; it bounds the memory a single
	// Run Writer allocates, and must be a multiple of block.Size.
	RunBytes int64
	// SplitConcurrency bounds how many Run Writers may be inside their
	// allocate/read/sort/write section at once.
	SplitConcurrency int
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.RunBytes <= 0 {
		c.RunBytes = DefaultRunBytes
	}
	if c.IntFileDir == "" {
		c.IntFileDir = DefaultIntFileDir
	}
	if c.SplitConcurrency <= 0 {
		c.SplitConcurrency = DefaultSplitConcurrency
	}
	return c
}
