package cache

import "testing"

func TestRecentKeepsLastFive(t *testing.T) {
	r, err := NewRecent[string, int](5)
	if err != nil {
		t.Fatalf("NewRecent: %v", err)
	}
	for i := 0; i < 7; i++ {
		r.Add(string(rune('a'+i)), i)
	}

	if r.Len() != 5 {
		t.Fatalf("Expected 5 values, got %d", r.Len())
	}
	got := r.Values()
	if got[0] != 2 || got[4] != 6 {
		t.Errorf("Expected oldest two evicted, got %v", got)
	}
}

func TestRecentDeduplicates(t *testing.T) {
	r, _ := NewRecent[string, string](5)
	r.Add("q", "first")
	r.Add("q", "second")

	if r.Len() != 1 {
		t.Errorf("Expected 1 value, got %d", r.Len())
	}
}

func TestRecentRandom(t *testing.T) {
	r, _ := NewRecent[int, int](3)
	if _, ok := r.Random(); ok {
		t.Fatalf("Expected no value from an empty cache")
	}

	r.Add(1, 10)
	r.Add(2, 20)
	for i := 0; i < 20; i++ {
		v, ok := r.Random()
		if !ok || (v != 10 && v != 20) {
			t.Fatalf("Unexpected random value %d", v)
		}
	}

	r.Purge()
	if r.Len() != 0 {
		t.Errorf("Expected empty cache after purge")
	}
}

func TestNewRecentRejectsZeroSize(t *testing.T) {
	if _, err := NewRecent[int, int](0); err == nil {
		t.Errorf("Expected an error for size 0")
	}
}
