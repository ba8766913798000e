package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/skillgap"
	"github.com/abhisek/examprep/internal/studylog"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	Offset int       // rows to skip
	After  int64     // id > After (events only)
	Before int64     // id < Before (events only)
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// StudyLogRepo stores one study log entry per calendar day.
type StudyLogRepo interface {
	// Upsert stores e, merging it into an existing entry for the same date.
	// It returns the entry as stored.
	Upsert(ctx context.Context, e studylog.Entry) (studylog.Entry, error)

	// List returns entries newest date first.
	List(ctx context.Context, opts QueryOpts) ([]studylog.Entry, error)
}

// ExamRepo stores submitted exam results.
type ExamRepo interface {
	// Save persists a result and returns it with its new ID.
	Save(ctx context.Context, r exam.Result) (exam.Record, error)

	// List returns records newest first.
	List(ctx context.Context, opts QueryOpts) ([]exam.Record, error)

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (exam.Record, error)
}

// InterviewRepo stores mock interview sessions and their feedback.
type InterviewRepo interface {
	Save(ctx context.Context, s interview.Session) (interview.Session, error)
	List(ctx context.Context, opts QueryOpts) ([]interview.Session, error)
	Get(ctx context.Context, id string) (interview.Session, error)

	// SaveFeedback attaches feedback once. A second call fails with
	// interview.ErrFeedbackExists.
	SaveFeedback(ctx context.Context, id string, fb interview.Feedback) error
}

// SkillGapRepo stores skill-gap reports.
type SkillGapRepo interface {
	Save(ctx context.Context, r skillgap.Report) (skillgap.Report, error)
	List(ctx context.Context, opts QueryOpts) ([]skillgap.Report, error)
}

// LLMEvent is a recorded LLM request.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	llm.RequestEvent
}

// LLMUsage aggregates LLM requests by a key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, ev llm.RequestEvent) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (LLMEvent, error)

	// LLMUsageByPurpose aggregates events per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates events per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
