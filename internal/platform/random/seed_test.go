package random

import "testing"

func TestNewSeedProducesDistinctValues(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 16; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed returned error: %v", err)
		}
		seen[seed] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct seeds, got %d unique values", len(seen))
	}
}
