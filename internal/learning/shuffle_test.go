package learning

import (
	"reflect"
	"sort"
	"testing"
)

func TestShuffleSlice_IsPermutation(t *testing.T) {
	s := NewShuffler(42)
	in := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	out := ShuffleSlice(s, in)

	if len(out) != len(in) {
		t.Fatalf("length changed: %d", len(out))
	}
	sorted := append([]int(nil), out...)
	sort.Ints(sorted)
	if !reflect.DeepEqual(sorted, in) {
		t.Errorf("not a permutation: %v", out)
	}
	if !reflect.DeepEqual(in, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}) {
		t.Error("input was modified")
	}
}

func TestShuffler_SeedIsReproducible(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f"}

	a := ShuffleSlice(NewShuffler(7), in)
	b := ShuffleSlice(NewShuffler(7), in)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

// TestShuffler_Uniform checks every permutation of three elements shows up
// with roughly equal frequency.
func TestShuffler_Uniform(t *testing.T) {
	s := NewShuffler(1)
	counts := make(map[string]int)
	const rounds = 60000

	for i := 0; i < rounds; i++ {
		out := ShuffleSlice(s, []string{"a", "b", "c"})
		counts[out[0]+out[1]+out[2]]++
	}

	if len(counts) != 6 {
		t.Fatalf("expected 6 permutations, saw %d", len(counts))
	}
	expected := rounds / 6
	for perm, n := range counts {
		if n < expected*9/10 || n > expected*11/10 {
			t.Errorf("permutation %s seen %d times, expected about %d", perm, n, expected)
		}
	}
}

func TestShuffler_Empty(t *testing.T) {
	s := NewShuffler(0)
	if out := ShuffleSlice(s, []int{}); len(out) != 0 {
		t.Errorf("expected empty, got %v", out)
	}
	if out := ShuffleSlice(s, []int{9}); out[0] != 9 {
		t.Errorf("expected [9], got %v", out)
	}
}
