package exam

import (
	"fmt"
	"strings"
)

// Type identifies one of the fixed exam tracks.
type Type string

const (
	TypeDSA  Type = "DSA"
	TypeSQL  Type = "SQL"
	TypeCN   Type = "CN"
	TypeDBMS Type = "DBMS"
	TypeOS   Type = "OS"
)

// DefaultQuestionCount is the number of questions requested per exam.
const DefaultQuestionCount = 10

// Info describes an exam track as shown in the picker.
type Info struct {
	Type            Type     `json:"type"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"durationMinutes"`
	Topics          []string `json:"topics"`
}

var catalog = []Info{
	{TypeDSA, "Data Structures & Algorithms", 30, []string{"Arrays", "Trees", "Graphs", "Dynamic Programming"}},
	{TypeSQL, "SQL & Databases", 25, []string{"Queries", "Joins", "Indexes", "Optimization"}},
	{TypeCN, "Computer Networks", 20, []string{"TCP/IP", "HTTP", "DNS", "Security"}},
	{TypeDBMS, "Database Management", 25, []string{"Normalization", "ACID", "Transactions"}},
	{TypeOS, "Operating Systems", 25, []string{"Processes", "Memory", "Scheduling"}},
}

// Catalog returns every exam track in display order.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for t.
func Lookup(t Type) (Info, bool) {
	for _, info := range catalog {
		if info.Type == t {
			return info, true
		}
	}
	return Info{}, false
}

// ParseType accepts an exam type case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := Lookup(t); !ok {
		return "", fmt.Errorf("unknown exam type %q", s)
	}
	return t, nil
}

// Name returns the display name of the track, or the raw code if unknown.
func (t Type) Name() string {
	if info, ok := Lookup(t); ok {
		return info.Name
	}
	return string(t)
}
