package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examprep/internal/analytics"
)

// LoadInput reads every collection the dashboard is built from. The four
// queries run concurrently; the first failure cancels the rest.
func LoadInput(ctx context.Context, logs StudyLogRepo, exams ExamRepo, interviews InterviewRepo, gaps SkillGapRepo) (analytics.Input, error) {
	var in analytics.Input
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Logs, err = logs.List(ctx, QueryOpts{})
		return err
	})
	g.Go(func() (err error) {
		in.Exams, err = exams.List(ctx, QueryOpts{})
		return err
	})
	g.Go(func() (err error) {
		in.Interviews, err = interviews.List(ctx, QueryOpts{})
		return err
	})
	g.Go(func() (err error) {
		in.SkillGaps, err = gaps.List(ctx, QueryOpts{})
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.Input{}, err
	}
	return in, nil
}

// DashboardInput is LoadInput over this store's repos.
func (s *Store) DashboardInput(ctx context.Context) (analytics.Input, error) {
	return LoadInput(ctx, s.StudyLogRepo(), s.ExamRepo(), s.InterviewRepo(), s.SkillGapRepo())
}
