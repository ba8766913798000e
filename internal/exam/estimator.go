package exam

import (
	"math/rand/v2"
	"sync"
)

// AIUsageEstimator produces the AI-usage percentage recorded with a result.
// There is no real signal behind it yet; implementations are placeholders
// that keep the field populated.
type AIUsageEstimator interface {
	EstimateAIUsage(graded []GradedQuestion) int
}

// MaxPlaceholderAIUsage bounds the values drawn by RandomEstimator.
const MaxPlaceholderAIUsage = 30

// RandomEstimator draws a uniform integer in [0, 30].
type RandomEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEstimator uses src, or a randomly seeded PCG when src is nil.
func NewRandomEstimator(src rand.Source) *RandomEstimator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomEstimator{rng: rand.New(src)}
}

func (e *RandomEstimator) EstimateAIUsage([]GradedQuestion) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(MaxPlaceholderAIUsage + 1)
}

// FixedEstimator always reports the same value.
type FixedEstimator int

func (f FixedEstimator) EstimateAIUsage([]GradedQuestion) int { return int(f) }
