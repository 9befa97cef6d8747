package core

import (
	"strings"
	"testing"
)

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(8, 3)

	if s.Width() != 8 || s.Height() != 3 {
		t.Fatalf("Expected 8x3, got %dx%d", s.Width(), s.Height())
	}
	for y := range s.Height() {
		for x := range s.Width() {
			if c := s.At(x, y); c.Rune != ' ' || c.Kind != KindBlank {
				t.Fatalf("Expected blank cell at (%d,%d), got %+v", x, y, c)
			}
		}
	}
}

func TestScreenPutKeepsKind(t *testing.T) {
	s := NewScreen(5, 5)

	s.Put(2, 3, 'O', KindHead)
	if c := s.At(2, 3); c.Rune != 'O' || c.Kind != KindHead {
		t.Errorf("At(2,3) = %+v", c)
	}

	// Out of bounds writes are dropped and reads are blank
	s.Put(-1, 0, 'x', KindBody)
	s.Put(5, 0, 'x', KindBody)
	if c := s.At(5, 0); c.Kind != KindBlank {
		t.Errorf("Out of bounds At should be blank, got %+v", c)
	}
	if strings.Contains(s.String(), "x") {
		t.Error("Out of bounds Put must not wrap onto another row")
	}

	s.Clear()
	if c := s.At(2, 3); c.Kind != KindBlank {
		t.Errorf("Clear should blank every cell, got %+v", c)
	}
}

func TestScreenText(t *testing.T) {
	s := NewScreen(10, 2)
	s.Text(7, 0, "Score", KindText)

	if got := strings.Split(s.String(), "\n")[0]; got != "       Sco" {
		t.Errorf("Text should clip at the right edge, got %q", got)
	}

	s.TextCentered(1, "Ümlaut", KindHint)
	if c := s.At(2, 1); c.Rune != 'Ü' || c.Kind != KindHint {
		t.Errorf("Centering should count runes, got %+v at (2,1)", c)
	}
}

func TestScreenFrame(t *testing.T) {
	s := NewScreen(6, 4)
	s.Frame(s.Bounds())

	want := "┌────┐\n│    │\n│    │\n└────┘"
	if s.String() != want {
		t.Errorf("Frame drew\n%s\nexpected\n%s", s.String(), want)
	}
	if c := s.At(0, 1); c.Kind != KindBorder {
		t.Errorf("Frame cells should be borders, got %+v", c)
	}
	if c := s.At(1, 1); c.Kind != KindBlank {
		t.Errorf("Frame must not touch the inside, got %+v", c)
	}
}

func TestScreenRuns(t *testing.T) {
	s := NewScreen(6, 1)
	s.Put(0, 0, 'o', KindBody)
	s.Put(1, 0, 'o', KindBody)
	s.Put(2, 0, 'O', KindHead)
	s.Put(4, 0, '*', KindFood)

	want := []Run{
		{KindBody, "oo"},
		{KindHead, "O"},
		{KindBlank, " "},
		{KindFood, "*"},
		{KindBlank, " "},
	}
	got := s.Runs(0)
	if len(got) != len(want) {
		t.Fatalf("Expected %d runs, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Run %d = %+v, expected %+v", i, got[i], want[i])
		}
	}
	if s.Runs(1) != nil {
		t.Error("Rows outside the screen have no runs")
	}
}

func TestScreenResizeBlanks(t *testing.T) {
	s := NewScreen(4, 4)
	s.Put(0, 0, 'O', KindHead)

	s.Resize(6, 2)
	if s.Width() != 6 || s.Height() != 2 {
		t.Fatalf("Expected 6x2, got %dx%d", s.Width(), s.Height())
	}
	if c := s.At(0, 0); c.Kind != KindBlank {
		t.Errorf("Resize should blank the screen, got %+v", c)
	}
}
