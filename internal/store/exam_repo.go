package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/exam"
)

const examTable = "exams"

var examColumns = []string{
	"id", "exam_type", "created_at", "score", "accuracy", "ai_usage",
	"total_questions", "correct_answers", "time_spent", "weak_topics", "questions",
}

type examRepo struct {
	drv *entsql.Driver
}

type examRow struct {
	ID             string `sql:"id"`
	ExamType       string `sql:"exam_type"`
	CreatedAt      int64  `sql:"created_at"`
	Score          int    `sql:"score"`
	Accuracy       int    `sql:"accuracy"`
	AIUsage        int    `sql:"ai_usage"`
	TotalQuestions int    `sql:"total_questions"`
	CorrectAnswers int    `sql:"correct_answers"`
	TimeSpent      int    `sql:"time_spent"`
	WeakTopics     []byte `sql:"weak_topics"`
	Questions      []byte `sql:"questions"`
}

func (row examRow) record() (exam.Record, error) {
	rec := exam.Record{
		ID: row.ID,
		Result: exam.Result{
			ExamType:         exam.Type(row.ExamType),
			CreatedAt:        fromMillis(row.CreatedAt),
			Score:            row.Score,
			Accuracy:         row.Accuracy,
			AIUsage:          row.AIUsage,
			TotalQuestions:   row.TotalQuestions,
			CorrectAnswers:   row.CorrectAnswers,
			TimeSpentSeconds: row.TimeSpent,
		},
	}
	if err := json.Unmarshal(row.WeakTopics, &rec.WeakTopics); err != nil {
		return exam.Record{}, fmt.Errorf("decode weak topics: %w", err)
	}
	if err := json.Unmarshal(row.Questions, &rec.Questions); err != nil {
		return exam.Record{}, fmt.Errorf("decode questions: %w", err)
	}
	return rec, nil
}

func (r *examRepo) Save(ctx context.Context, res exam.Result) (exam.Record, error) {
	weak, err := json.Marshal(nonNil(res.WeakTopics))
	if err != nil {
		return exam.Record{}, fail("encode weak topics", err)
	}
	questions, err := json.Marshal(res.Questions)
	if err != nil {
		return exam.Record{}, fail("encode questions", err)
	}

	rec := exam.Record{ID: uuid.NewString(), Result: res.Clone()}
	ins := builder().Insert(examTable).
		Columns(examColumns...).
		Values(rec.ID, string(res.ExamType), millis(res.CreatedAt), res.Score, res.Accuracy, res.AIUsage,
			res.TotalQuestions, res.CorrectAnswers, res.TimeSpentSeconds, weak, questions)
	if err := exec(ctx, r.drv, ins); err != nil {
		return exam.Record{}, fail("save exam", err)
	}
	return rec, nil
}

func (r *examRepo) List(ctx context.Context, opts QueryOpts) ([]exam.Record, error) {
	sel := builder().Select(examColumns...).
		From(builder().Table(examTable)).
		OrderBy(entsql.Desc("created_at"))
	sel = paginate(timeRange(sel, "created_at", opts), opts)

	rows, err := scanAll[examRow](ctx, r.drv, sel)
	if err != nil {
		return nil, fail("list exams", err)
	}
	out := make([]exam.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, fail("list exams", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *examRepo) Get(ctx context.Context, id string) (exam.Record, error) {
	sel := builder().Select(examColumns...).
		From(builder().Table(examTable)).
		Where(entsql.EQ("id", id))
	rows, err := scanAll[examRow](ctx, r.drv, sel)
	if err != nil {
		return exam.Record{}, fail("get exam", err)
	}
	if len(rows) == 0 {
		return exam.Record{}, fmt.Errorf("exam %s: %w", id, ErrNotFound)
	}
	rec, err := rows[0].record()
	if err != nil {
		return exam.Record{}, fail("get exam", err)
	}
	return rec, nil
}
