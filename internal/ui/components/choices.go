package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// ChoiceList is a cursor over answer options with an optional marked
// (already chosen) option. It does not know the correct answer.
type ChoiceList struct {
	Options []string
	Cursor  int
	Marked  int // index of the recorded answer, -1 for none
}

// NewChoiceList places the cursor on the marked option, or the first one.
func NewChoiceList(options []string, marked string) ChoiceList {
	c := ChoiceList{Options: options, Marked: -1}
	for i, o := range options {
		if o == marked {
			c.Marked = i
			c.Cursor = i
		}
	}
	return c
}

// Update moves the cursor with up/down or k/j and jumps to an option with
// its number key. It reports whether the message was a choice key.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}
	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
		return c, true
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
		return c, true
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(c.Options) {
			c.Cursor = i
			return c, true
		}
	}
	return c, false
}

// Current returns the option under the cursor.
func (c ChoiceList) Current() string {
	if c.Cursor < 0 || c.Cursor >= len(c.Options) {
		return ""
	}
	return c.Options[c.Cursor]
}

// View renders numbered options. The marked option carries a check.
func (c ChoiceList) View(width int) string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Cursor {
			prefix = "▸ "
		}
		mark := " "
		if i == c.Marked {
			mark = "✓"
		}
		line := fmt.Sprintf("%s%d) %s %s", prefix, i+1, opt, mark)

		style := theme.Unselected
		switch {
		case i == c.Cursor:
			style = theme.Selected
		case i == c.Marked:
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		b.WriteString(style.Width(width).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
