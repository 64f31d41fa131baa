package access

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
)

func key(sub []string) string {
	s := make([]string, len(sub))
	copy(s, sub)
	sort.Strings(s)
	return fmt.Sprintf("%v", s)
}

func TestCombinations_PowerSet(t *testing.T) {
	for n := 0; n <= 6; n++ {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf("p%d", i)
		}
		combos := Combinations(items)

		if len(combos) != 1<<n {
			t.Fatalf("n=%d: expected %d subsets, got %d", n, 1<<n, len(combos))
		}

		seen := make(map[string]struct{}, len(combos))
		for _, c := range combos {
			k := key(c)
			if _, dup := seen[k]; dup {
				t.Fatalf("n=%d: duplicate subset %v", n, c)
			}
			seen[k] = struct{}{}
		}

		if len(combos[0]) != 0 {
			t.Fatalf("n=%d: first subset must be empty, got %v", n, combos[0])
		}
		if len(combos[len(combos)-1]) != n {
			t.Fatalf("n=%d: last subset must be the full set, got %v", n, combos[len(combos)-1])
		}
	}
}

func TestCombinations_AscendingCardinality(t *testing.T) {
	combos := Combinations([]string{"a", "b", "c", "d"})
	for i := 1; i < len(combos); i++ {
		if len(combos[i]) < len(combos[i-1]) {
			t.Fatalf("cardinality not ascending at %d: %v after %v", i, combos[i], combos[i-1])
		}
	}
}

func TestCombinations_Deterministic(t *testing.T) {
	items := []string{"github", "twitter", "facebook"}
	first := Combinations(items)
	second := Combinations(items)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("order not reproducible across calls")
	}
}

func TestCombinations_InputNotModified(t *testing.T) {
	items := []string{"b", "a"}
	_ = Combinations(items)
	if items[0] != "b" || items[1] != "a" {
		t.Fatalf("input slice modified: %v", items)
	}
}
