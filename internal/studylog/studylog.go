// Package studylog models daily study entries and the rules for accepting
// them: one entry per calendar day, hours within a day, topics as a list.
package studylog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
)

// MaxHours is the most study time a single day can hold.
const MaxHours = 24

// Entry is one day's study log.
type Entry struct {
	Date   civil.Date `json:"date" yaml:"date"`
	Hours  float64    `json:"hoursStudied" yaml:"hoursStudied" validate:"gte=0,lte=24"`
	Topics []string   `json:"topicsCovered" yaml:"topicsCovered" validate:"dive,required"`
	Notes  string     `json:"notes,omitempty" yaml:"notes,omitempty" validate:"max=2000"`
}

// ErrInvalidEntry is wrapped by every validation failure.
var ErrInvalidEntry = errors.New("invalid study log entry")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the invariants every stored entry must satisfy.
func (e Entry) Validate() error {
	if e.Date.IsZero() || !e.Date.IsValid() {
		return fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}
	if math.IsNaN(e.Hours) || math.IsInf(e.Hours, 0) {
		return fmt.Errorf("%w: hours must be a finite number", ErrInvalidEntry)
	}
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidEntry, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Hours":
		return fmt.Sprintf("hours must be between 0 and %d", MaxHours)
	case "Topics":
		return "topics must not be empty strings"
	case "Notes":
		return "notes are too long"
	}
	return fe.Error()
}

// ValidateFormHours applies the stricter rule used by interactive input:
// hours in half-hour steps.
func ValidateFormHours(h float64) error {
	if h < 0 || h > MaxHours {
		return fmt.Errorf("%w: hours must be between 0 and %d", ErrInvalidEntry, MaxHours)
	}
	if h*2 != math.Trunc(h*2) {
		return fmt.Errorf("%w: hours must be in steps of 0.5", ErrInvalidEntry)
	}
	return nil
}

// ParseTopics splits a comma separated list, trimming blanks and dropping
// empty items.
func ParseTopics(s string) []string {
	var topics []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			topics = append(topics, p)
		}
	}
	return topics
}

// Merge folds b into a. Both must be for the same date. Hours add up,
// topics are unioned in first-seen order and notes are joined by newline.
// The merged entry is validated, so two entries whose hours together exceed
// a day are rejected.
func Merge(a, b Entry) (Entry, error) {
	if a.Date != b.Date {
		return Entry{}, fmt.Errorf("merge %s with %s: dates differ", a.Date, b.Date)
	}
	out := Entry{
		Date:   a.Date,
		Hours:  a.Hours + b.Hours,
		Topics: unionTopics(a.Topics, b.Topics),
	}
	switch {
	case a.Notes == "":
		out.Notes = b.Notes
	case b.Notes == "":
		out.Notes = a.Notes
	default:
		out.Notes = a.Notes + "\n" + b.Notes
	}
	if err := out.Validate(); err != nil {
		return Entry{}, err
	}
	return out, nil
}

func unionTopics(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Collapse merges same-date entries so the result holds at most one entry
// per day. Order follows the first occurrence of each date.
func Collapse(entries []Entry) ([]Entry, error) {
	index := make(map[civil.Date]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		i, ok := index[e.Date]
		if !ok {
			index[e.Date] = len(out)
			out = append(out, e)
			continue
		}
		merged, err := Merge(out[i], e)
		if err != nil {
			return nil, err
		}
		out[i] = merged
	}
	return out, nil
}

// TotalHours sums the hours of all entries.
func TotalHours(entries []Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Hours
	}
	return total
}
