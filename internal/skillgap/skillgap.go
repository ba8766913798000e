// Package skillgap produces and models skill-gap reports: what a learner is
// missing for a target role and a phased plan to close the gap.
package skillgap

import (
	"time"
)

// Request is what the learner submits for analysis.
type Request struct {
	TargetRole       string   `json:"targetRole" yaml:"targetRole" validate:"required,max=120"`
	CurrentSkills    []string `json:"currentSkills" yaml:"currentSkills" validate:"dive,required"`
	PreparationWeeks int      `json:"preparationWeeks" yaml:"preparationWeeks" validate:"gte=1,lte=104"`
}

// Step is one phase of the roadmap.
type Step struct {
	Phase string   `json:"phase" yaml:"phase"`
	Focus string   `json:"focus" yaml:"focus"`
	Tasks []string `json:"tasks" yaml:"tasks"`
}

// Analysis is the generated part of a report.
type Analysis struct {
	MissingSkills []string `json:"missingSkills" yaml:"missingSkills"`
	Roadmap       []Step   `json:"roadmap" yaml:"roadmap"`
	Strategies    []string `json:"strategies" yaml:"strategies"`
}

// Report is a stored analysis.
type Report struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Request   `yaml:",inline"`
	Analysis  `yaml:",inline"`
}
