package bloomfilter

import "testing"

func TestNeverFalseNegative(t *testing.T) {
	f := New(1000, 0.01)
	keys := make([][]byte, 500)
	for i := range keys {
		keys[i] = []byte{byte(i), byte(i >> 8), byte(i >> 16)}
		f.Add(keys[i])
	}
	for i, k := range keys {
		if !f.MightContain(k) {
			t.Fatalf("key %d: false negative, bloom filters must never miss an inserted key", i)
		}
	}
	// Count() is the library's own approximation, not an exact insert
	// tally, so only check it lands in a plausible range.
	if c := f.Count(); c <= 0 || c > 2*len(keys) {
		t.Fatalf("Count() = %d, want a rough estimate near %d", c, len(keys))
	}
}

func TestEmptyFilterRejectsEverything(t *testing.T) {
	f := New(100, 0.01)
	if f.MightContain([]byte("anything")) {
		t.Fatal("an empty filter should not report any key as present")
	}
}

func TestNewClampsDegenerateInputs(t *testing.T) {
	// n <= 0 and out-of-range fpRate must not panic or divide by zero.
	f := New(0, 0)
	f.Add([]byte("x"))
	if !f.MightContain([]byte("x")) {
		t.Fatal("degenerate-size filter must still hold what was just inserted")
	}
}
