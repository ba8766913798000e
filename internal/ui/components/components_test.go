package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestChoiceListNavigation(t *testing.T) {
	c := NewChoiceList([]string{"O(1)", "O(n)", "O(log n)"}, "O(n)")
	if c.Cursor != 1 || c.Marked != 1 {
		t.Fatalf("cursor=%d marked=%d, want 1/1", c.Cursor, c.Marked)
	}

	c, handled := c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if !handled || c.Current() != "O(log n)" {
		t.Errorf("down: current=%q handled=%v", c.Current(), handled)
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if c.Cursor != 2 {
		t.Errorf("cursor should stop at last option, got %d", c.Cursor)
	}

	c, handled = c.Update(keyPress('1'))
	if !handled || c.Current() != "O(1)" {
		t.Errorf("number key: current=%q", c.Current())
	}
	if _, handled = c.Update(keyPress('7')); handled {
		t.Error("out-of-range number key should not be handled")
	}
}

func TestChoiceListUnmarked(t *testing.T) {
	c := NewChoiceList([]string{"a", "b"}, "")
	if c.Marked != -1 || c.Cursor != 0 {
		t.Errorf("cursor=%d marked=%d", c.Cursor, c.Marked)
	}
	if !strings.Contains(c.View(40), "1) a") {
		t.Error("view should number options")
	}
}

func TestTextInputNumericOnly(t *testing.T) {
	in := NewTextInput("Hours", "2.5", true, 5)
	in.Focus()
	for _, r := range "2x.5." {
		in, _ = in.Update(keyPress(r))
	}
	if in.Value() != "2.5" {
		t.Errorf("value = %q, want 2.5", in.Value())
	}
	v, err := in.FloatValue()
	if err != nil || v != 2.5 {
		t.Errorf("FloatValue = %v, %v", v, err)
	}
}

func TestBarWidth(t *testing.T) {
	for _, f := range []float64{-1, 0, 0.5, 1, 2} {
		if got := len([]rune(stripANSI(Bar(f, 10)))); got != 10 {
			t.Errorf("Bar(%v) width = %d, want 10", f, got)
		}
	}
}

// stripANSI drops escape sequences so widths can be compared.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
