package viewer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderedSet(t *testing.T) {
	s := NewRenderedSet()
	if !s.Add(5) || !s.Add(2) {
		t.Fatal("first Add reported duplicate")
	}
	if s.Add(5) {
		t.Error("second Add of 5 reported new")
	}
	if diff := cmp.Diff([]int{2, 5}, s.Pages()); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	s.Clear()
	if s.Len() != 0 || s.Has(2) {
		t.Error("Clear left pages behind")
	}
}

func TestFlipWorkingSet(t *testing.T) {
	tests := []struct {
		index, total int
		want         []int
	}{
		{0, 60, []int{1, 2, 3}},
		{17, 60, []int{17, 18, 19, 20}},
		{58, 60, []int{58, 59, 60}},
		{59, 60, []int{59, 60}},
		{0, 1, []int{1}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, FlipWorkingSet(tt.index, tt.total)); diff != "" {
			t.Errorf("FlipWorkingSet(%d, %d) mismatch (-want +got):\n%s", tt.index, tt.total, diff)
		}
	}
}
