package questiongen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/examprep/internal/exam"
)

// StaticGenerator serves questions from the built-in bank. Without a
// random source it returns the bank in order; with one it draws a
// shuffled selection.
type StaticGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStaticGenerator returns a generator over the built-in bank. src may be nil.
func NewStaticGenerator(src rand.Source) *StaticGenerator {
	g := &StaticGenerator{}
	if src != nil {
		g.rng = rand.New(src)
	}
	return g
}

func (g *StaticGenerator) Generate(ctx context.Context, t exam.Type, count int) ([]exam.QuestionSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, genErr(t, err)
	}
	pool, ok := bank[t]
	if !ok || len(pool) == 0 {
		return nil, genErr(t, fmt.Errorf("no built-in questions for %q", t))
	}
	if count <= 0 {
		count = exam.DefaultQuestionCount
	}

	qs := make([]exam.QuestionSpec, len(pool))
	for i, q := range pool {
		q.Options = slices.Clone(q.Options)
		qs[i] = q
	}
	if g.rng != nil {
		g.mu.Lock()
		g.rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		g.mu.Unlock()
	}
	return qs[:min(count, len(qs))], nil
}

// BankSize reports how many built-in questions exist for t.
func BankSize(t exam.Type) int {
	return len(bank[t])
}
