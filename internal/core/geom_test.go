package core

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 2, Y: 3, W: 4, H: 2}

	for _, p := range [][2]int{{2, 3}, {5, 4}} {
		if !r.Contains(p[0], p[1]) {
			t.Errorf("%v should be inside %+v", p, r)
		}
	}
	for _, p := range [][2]int{{1, 3}, {6, 3}, {2, 5}, {2, 2}} {
		if r.Contains(p[0], p[1]) {
			t.Errorf("%v should be outside %+v", p, r)
		}
	}
}

func TestRectInner(t *testing.T) {
	inner := Rect{X: 1, Y: 1, W: 22, H: 22}.Inner()
	if inner != (Rect{X: 2, Y: 2, W: 20, H: 20}) {
		t.Errorf("Unexpected inner rect %+v", inner)
	}
	if thin := (Rect{W: 1, H: 1}).Inner(); thin.W != 0 || thin.H != 0 {
		t.Errorf("Inner of a 1x1 rect should be empty, got %+v", thin)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 19, 5},
		{-1, 0, 19, 0},
		{20, 0, 19, 19},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}
