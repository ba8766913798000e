package store

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/studylog"
	"github.com/abhisek/examprep/internal/timewindow"
)

const studyLogTable = "study_logs"

type studyLogRepo struct {
	drv   *entsql.Driver
	clock clock.Clock
}

type studyLogRow struct {
	Date   string  `sql:"date"`
	Hours  float64 `sql:"hours"`
	Topics []byte  `sql:"topics"`
	Notes  string  `sql:"notes"`
}

func (row studyLogRow) entry() (studylog.Entry, error) {
	d, err := civil.ParseDate(row.Date)
	if err != nil {
		return studylog.Entry{}, fmt.Errorf("parse date %q: %w", row.Date, err)
	}
	e := studylog.Entry{Date: d, Hours: row.Hours, Notes: row.Notes}
	if err := json.Unmarshal(row.Topics, &e.Topics); err != nil {
		return studylog.Entry{}, fmt.Errorf("decode topics: %w", err)
	}
	return e, nil
}

func (r *studyLogRepo) Upsert(ctx context.Context, e studylog.Entry) (studylog.Entry, error) {
	if err := e.Validate(); err != nil {
		return studylog.Entry{}, err
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return studylog.Entry{}, fail("begin study log upsert", err)
	}

	stored, err := upsertStudyLog(ctx, tx, e, millis(r.clock.Now()))
	if err != nil {
		tx.Rollback()
		return studylog.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return studylog.Entry{}, fail("commit study log upsert", err)
	}
	return stored, nil
}

func upsertStudyLog(ctx context.Context, tx dialect.Tx, e studylog.Entry, now int64) (studylog.Entry, error) {
	sel := builder().Select("date", "hours", "topics", "notes").
		From(builder().Table(studyLogTable)).
		Where(entsql.EQ("date", e.Date.String()))
	rows, err := scanAll[studyLogRow](ctx, tx, sel)
	if err != nil {
		return studylog.Entry{}, fail("load study log", err)
	}
	if len(rows) > 0 {
		existing, err := rows[0].entry()
		if err != nil {
			return studylog.Entry{}, fail("load study log", err)
		}
		if e, err = studylog.Merge(existing, e); err != nil {
			return studylog.Entry{}, err
		}
	}

	topics, err := json.Marshal(nonNil(e.Topics))
	if err != nil {
		return studylog.Entry{}, fail("encode topics", err)
	}
	ins := builder().Insert(studyLogTable).
		Columns("date", "hours", "topics", "notes", "updated_at").
		Values(e.Date.String(), e.Hours, topics, e.Notes, now).
		OnConflict(entsql.ConflictColumns("date"), entsql.ResolveWithNewValues())
	if err := exec(ctx, tx, ins); err != nil {
		return studylog.Entry{}, fail("save study log", err)
	}
	return e, nil
}

func (r *studyLogRepo) List(ctx context.Context, opts QueryOpts) ([]studylog.Entry, error) {
	sel := builder().Select("date", "hours", "topics", "notes").
		From(builder().Table(studyLogTable)).
		OrderBy(entsql.Desc("date"))
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("date", timewindow.Day(opts.From).String()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("date", timewindow.Day(opts.To).String()))
	}
	rows, err := scanAll[studyLogRow](ctx, r.drv, paginate(sel, opts))
	if err != nil {
		return nil, fail("list study logs", err)
	}

	out := make([]studylog.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, fail("list study logs", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
