package studylog

import (
	"errors"
	"math"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = civil.Date{Year: 2025, Month: 5, Day: 20}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"ok", Entry{Date: day, Hours: 2.5, Topics: []string{"Trees"}}, false},
		{"zero hours", Entry{Date: day}, false},
		{"full day", Entry{Date: day, Hours: 24}, false},
		{"missing date", Entry{Hours: 1}, true},
		{"negative", Entry{Date: day, Hours: -0.5}, true},
		{"over a day", Entry{Date: day, Hours: 24.5}, true},
		{"nan", Entry{Date: day, Hours: math.NaN()}, true},
		{"inf", Entry{Date: day, Hours: math.Inf(1)}, true},
		{"blank topic", Entry{Date: day, Hours: 1, Topics: []string{""}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidEntry))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFormHours(t *testing.T) {
	assert.NoError(t, ValidateFormHours(0))
	assert.NoError(t, ValidateFormHours(3.5))
	assert.Error(t, ValidateFormHours(1.25))
	assert.Error(t, ValidateFormHours(25))
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"Trees", "Graphs", "DP"}, ParseTopics(" Trees, Graphs ,, DP ,"))
	assert.Empty(t, ParseTopics("  ,  "))
}

func TestMerge(t *testing.T) {
	a := Entry{Date: day, Hours: 2, Topics: []string{"Trees", "SQL"}, Notes: "morning"}
	b := Entry{Date: day, Hours: 1.5, Topics: []string{"SQL", "OS"}, Notes: "evening"}

	m, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3.5, m.Hours)
	assert.Equal(t, []string{"Trees", "SQL", "OS"}, m.Topics)
	assert.Equal(t, "morning\nevening", m.Notes)

	_, err = Merge(Entry{Date: day, Hours: 20}, Entry{Date: day, Hours: 5})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = Merge(a, Entry{Date: day.AddDays(1)})
	assert.Error(t, err)
}

func TestCollapse(t *testing.T) {
	in := []Entry{
		{Date: day, Hours: 1},
		{Date: day.AddDays(-1), Hours: 2},
		{Date: day, Hours: 3, Notes: "again"},
	}
	out, err := Collapse(in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, day, out[0].Date)
	assert.Equal(t, 4.0, out[0].Hours)
	assert.Equal(t, "again", out[0].Notes)
	assert.Equal(t, 6.0, TotalHours(out))
}
