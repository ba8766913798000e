package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/questiongen"
	"github.com/abhisek/examprep/internal/store"
)

// engine bundles the collaborators shared by the TUI, the API server and
// the CLI commands.
type engine struct {
	store     *store.Store
	provider  llm.Provider
	offline   bool // mock backend, no model calls
	generator questiongen.Generator
	estimator exam.AIUsageEstimator
	weekStart time.Weekday
	clock     clock.Clock
	log       *zap.Logger
}

// newEngine opens the store and the configured LLM backend. The caller
// closes the store.
func newEngine(ctx context.Context) (*engine, error) {
	weekStart, err := rt.cfg.WeekStart()
	if err != nil {
		return nil, err
	}
	llmCfg, err := rt.cfg.LLMProviderConfig()
	if err != nil {
		return nil, fmt.Errorf("llm config: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), rt.log.Named("llm"))
	if err != nil {
		st.Close()
		return nil, err
	}

	e := &engine{
		store:     st,
		provider:  provider,
		offline:   llmCfg.Provider == llm.ProviderMock,
		estimator: exam.NewRandomEstimator(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		weekStart: weekStart,
		clock:     clock.Real{},
		log:       rt.log,
	}
	if e.offline {
		rt.log.Info("no LLM backend configured, using the built-in question bank")
		e.generator = questiongen.NewStaticGenerator(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	} else {
		rt.log.Info("llm backend selected", zap.String("provider", llmCfg.Provider))
		e.generator = questiongen.New(provider, questiongen.DefaultConfig(), rt.log.Named("questiongen"))
	}
	return e, nil
}

func (e *engine) Close() error {
	return e.store.Close()
}

// requireModel rejects AI-only commands when no backend is configured.
func (e *engine) requireModel(feature string) error {
	if e.offline {
		return fmt.Errorf("%s needs an LLM backend: set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY, or llm.provider in the config", feature)
	}
	return nil
}
