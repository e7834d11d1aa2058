package subject

import (
	"reflect"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"mathematics":  Mathematics,
		" PHYSICS ":    Physics,
		"english":      English,
		"Economics":    "Economics",
		"  Government": "Government",
	}
	for in, want := range tests {
		if got := Canonical(in); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSort(t *testing.T) {
	names := []string{"Government", Biology, "Economics", Mathematics, English}
	Sort(names)
	want := []string{Mathematics, Biology, English, "Economics", "Government"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Sort = %v, want %v", names, want)
	}
}
