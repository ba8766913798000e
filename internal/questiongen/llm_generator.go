package questiongen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/llm"
)

// Config tunes LLMGenerator.
type Config struct {
	Validators  []Validator
	MaxTokens   int
	Temperature float64

	// Attempts is how many batches may be requested when validation fails
	// with a retryable error.
	Attempts int
}

// DefaultConfig is the production setup.
func DefaultConfig() Config {
	return Config{
		Validators:  DefaultValidators(),
		MaxTokens:   4096,
		Temperature: 0.7,
		Attempts:    2,
	}
}

// LLMGenerator asks an llm.Provider for a question batch.
type LLMGenerator struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// New returns an LLMGenerator. A nil logger disables logging.
func New(p llm.Provider, cfg Config, log *zap.Logger) *LLMGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &LLMGenerator{provider: p, cfg: cfg, log: log}
}

type batch struct {
	Questions []exam.QuestionSpec `json:"questions"`
}

func (g *LLMGenerator) Generate(ctx context.Context, t exam.Type, count int) ([]exam.QuestionSpec, error) {
	info, ok := exam.Lookup(t)
	if !ok {
		return nil, genErr(t, fmt.Errorf("unknown exam type %q", t))
	}
	if count <= 0 {
		count = exam.DefaultQuestionCount
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	var lastErr error
	for attempt := 1; attempt <= g.cfg.Attempts; attempt++ {
		qs, err := g.once(ctx, info, count)
		if err == nil {
			g.log.Info("generated questions",
				zap.String("exam_type", string(t)),
				zap.Int("requested", count),
				zap.Int("accepted", len(qs)),
				zap.Int("attempt", attempt))
			return qs, nil
		}
		lastErr = err

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			break
		}
		g.log.Warn("question batch rejected", zap.String("exam_type", string(t)), zap.Error(err))
	}
	return nil, genErr(t, lastErr)
}

func (g *LLMGenerator) once(ctx context.Context, info exam.Info, count int) ([]exam.QuestionSpec, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserPrompt(userPrompt(info, count)),
		Schema:      BatchSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}
	var out batch
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	qs, err := runValidators(g.cfg.Validators, out.Questions, info)
	if err != nil {
		return nil, err
	}
	if len(qs) > count {
		qs = qs[:count]
	}
	return qs, nil
}
