package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/interview"
)

const interviewTable = "interviews"

var interviewColumns = []string{"id", "session_type", "created_at", "duration", "overall_score", "notes", "feedback"}

var validate = validator.New(validator.WithRequiredStructEnabled())

type interviewRepo struct {
	drv   *entsql.Driver
	clock clock.Clock
}

type interviewRow struct {
	ID           string `sql:"id"`
	SessionType  string `sql:"session_type"`
	CreatedAt    int64  `sql:"created_at"`
	Duration     int    `sql:"duration"`
	OverallScore int    `sql:"overall_score"`
	Notes        string `sql:"notes"`
	Feedback     []byte `sql:"feedback"`
}

func (row interviewRow) session() (interview.Session, error) {
	s := interview.Session{
		ID:              row.ID,
		SessionType:     row.SessionType,
		CreatedAt:       fromMillis(row.CreatedAt),
		DurationSeconds: row.Duration,
		OverallScore:    row.OverallScore,
		Notes:           row.Notes,
	}
	if len(row.Feedback) > 0 {
		var fb interview.Feedback
		if err := json.Unmarshal(row.Feedback, &fb); err != nil {
			return interview.Session{}, fmt.Errorf("decode feedback: %w", err)
		}
		s.Feedback = &fb
	}
	return s, nil
}

func (r *interviewRepo) Save(ctx context.Context, s interview.Session) (interview.Session, error) {
	if err := validate.Struct(s); err != nil {
		return interview.Session{}, fmt.Errorf("invalid interview: %w", err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.clock.Now()
	}
	var fb any // NULL until feedback arrives
	if s.Feedback != nil {
		data, err := json.Marshal(s.Feedback)
		if err != nil {
			return interview.Session{}, fail("encode feedback", err)
		}
		fb = data
	}

	ins := builder().Insert(interviewTable).
		Columns(interviewColumns...).
		Values(s.ID, s.SessionType, millis(s.CreatedAt), s.DurationSeconds, s.OverallScore, s.Notes, fb)
	if err := exec(ctx, r.drv, ins); err != nil {
		return interview.Session{}, fail("save interview", err)
	}
	return s, nil
}

func (r *interviewRepo) List(ctx context.Context, opts QueryOpts) ([]interview.Session, error) {
	sel := builder().Select(interviewColumns...).
		From(builder().Table(interviewTable)).
		OrderBy(entsql.Desc("created_at"))
	sel = paginate(timeRange(sel, "created_at", opts), opts)

	rows, err := scanAll[interviewRow](ctx, r.drv, sel)
	if err != nil {
		return nil, fail("list interviews", err)
	}
	out := make([]interview.Session, 0, len(rows))
	for _, row := range rows {
		s, err := row.session()
		if err != nil {
			return nil, fail("list interviews", err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *interviewRepo) Get(ctx context.Context, id string) (interview.Session, error) {
	sel := builder().Select(interviewColumns...).
		From(builder().Table(interviewTable)).
		Where(entsql.EQ("id", id))
	rows, err := scanAll[interviewRow](ctx, r.drv, sel)
	if err != nil {
		return interview.Session{}, fail("get interview", err)
	}
	if len(rows) == 0 {
		return interview.Session{}, fmt.Errorf("interview %s: %w", id, ErrNotFound)
	}
	s, err := rows[0].session()
	if err != nil {
		return interview.Session{}, fail("get interview", err)
	}
	return s, nil
}

func (r *interviewRepo) SaveFeedback(ctx context.Context, id string, fb interview.Feedback) error {
	data, err := json.Marshal(fb)
	if err != nil {
		return fail("encode feedback", err)
	}
	upd := builder().Update(interviewTable).
		Set("feedback", data).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("feedback")))

	query, args := upd.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fail("save feedback", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fail("save feedback", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: tell a missing interview from one already reviewed.
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return interview.ErrFeedbackExists
}
