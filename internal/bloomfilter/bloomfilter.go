// Package bloomfilter wraps an approximate set-membership filter used as
// an operator diagnostic: an approximate count of distinct blocks seen
// while checking a file. It never influences the pass/fail verdict of
// the checker, only a logged field.
//
// Grounded on TheEntropyCollective-noisefs's own use of
// github.com/bits-and-blooms/bloom/v3 for the identical concern
// (approximate set-membership / distinct-item tracking) in
// pkg/storage/cache/bloom_exchange.go — that library is reused here
// rather than hand-rolling bit-array Bloom-filter math on top of xxhash.
package bloomfilter

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a thin adapter over *bloom.BloomFilter sized for an expected
// element count and false-positive rate.
type Filter struct {
	bf *bloom.BloomFilter
}

// New constructs a Filter sized for n expected elements at the given
// false-positive rate (e.g. 0.01 for 1%).
func New(n int, fpRate float64) *Filter {
	if n < 1 {
		n = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	return &Filter{bf: bloom.NewWithEstimates(uint(n), fpRate)}
}

// Add inserts key into the filter.
func (f *Filter) Add(key []byte) {
	f.bf.Add(key)
}

// MightContain reports whether key may be in the set. false is always
// accurate; true may be a false positive.
func (f *Filter) MightContain(key []byte) bool {
	return f.bf.Test(key)
}

// Count returns the filter's own approximated distinct-element estimate,
// derived from its fill ratio rather than a running insert tally.
func (f *Filter) Count() int {
	return int(f.bf.ApproximatedSize())
}
