package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/skillgap"
)

const skillGapTable = "skill_gaps"

type skillGapRepo struct {
	drv   *entsql.Driver
	clock clock.Clock
}

type skillGapRow struct {
	ID        string `sql:"id"`
	CreatedAt int64  `sql:"created_at"`
	Request   []byte `sql:"request"`
	Analysis  []byte `sql:"analysis"`
}

func (r *skillGapRepo) Save(ctx context.Context, rep skillgap.Report) (skillgap.Report, error) {
	if err := rep.Request.Validate(); err != nil {
		return skillgap.Report{}, err
	}
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = r.clock.Now()
	}
	req, err := json.Marshal(rep.Request)
	if err != nil {
		return skillgap.Report{}, fail("encode skill gap request", err)
	}
	analysis, err := json.Marshal(rep.Analysis)
	if err != nil {
		return skillgap.Report{}, fail("encode skill gap analysis", err)
	}

	ins := builder().Insert(skillGapTable).
		Columns("id", "created_at", "request", "analysis").
		Values(rep.ID, millis(rep.CreatedAt), req, analysis)
	if err := exec(ctx, r.drv, ins); err != nil {
		return skillgap.Report{}, fail("save skill gap", err)
	}
	return rep, nil
}

func (r *skillGapRepo) List(ctx context.Context, opts QueryOpts) ([]skillgap.Report, error) {
	sel := builder().Select("id", "created_at", "request", "analysis").
		From(builder().Table(skillGapTable)).
		OrderBy(entsql.Desc("created_at"))
	sel = paginate(timeRange(sel, "created_at", opts), opts)

	rows, err := scanAll[skillGapRow](ctx, r.drv, sel)
	if err != nil {
		return nil, fail("list skill gaps", err)
	}
	out := make([]skillgap.Report, 0, len(rows))
	for _, row := range rows {
		rep := skillgap.Report{ID: row.ID, CreatedAt: fromMillis(row.CreatedAt)}
		if err := json.Unmarshal(row.Request, &rep.Request); err != nil {
			return nil, fail("list skill gaps", fmt.Errorf("decode request: %w", err))
		}
		if err := json.Unmarshal(row.Analysis, &rep.Analysis); err != nil {
			return nil, fail("list skill gaps", fmt.Errorf("decode analysis: %w", err))
		}
		out = append(out, rep)
	}
	return out, nil
}
