package llm

import "context"

// Purposes attached to requests so the event log can group usage.
const (
	PurposeQuestionGen       = "question-gen"
	PurposeInterviewFeedback = "interview-feedback"
	PurposeSkillGap          = "skill-gap"
)

type purposeKey struct{}

// WithPurpose labels every request made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}
