package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// FeedbackStore persists feedback. The SQLite interview repo implements it.
type FeedbackStore interface {
	SaveFeedback(ctx context.Context, id string, fb Feedback) error
}

// Outcome is delivered to the callback once a request finishes.
type Outcome struct {
	SessionID string
	Feedback  Feedback
	Err       error
}

var (
	// ErrQueueFull is returned when too many feedback requests are pending.
	ErrQueueFull = errors.New("feedback queue is full")
	// ErrServiceClosed is returned by Request after Close.
	ErrServiceClosed = errors.New("feedback service closed")
)

type feedbackJob struct {
	ctx     context.Context
	session Session
	done    func(Outcome)
}

// Service evaluates interviews in the background, one at a time, and
// stores the feedback it receives.
type Service struct {
	provider FeedbackProvider
	store    FeedbackStore
	log      *zap.Logger

	mu      sync.Mutex
	closed  bool
	pending chan feedbackJob
	wg      sync.WaitGroup
}

// NewService starts the worker. queue is the number of requests that may
// wait; values below one mean one.
func NewService(p FeedbackProvider, store FeedbackStore, queue int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		provider: p,
		store:    store,
		log:      log,
		pending:  make(chan feedbackJob, max(queue, 1)),
	}
	s.wg.Add(1)
	go s.work()
	return s
}

// Request queues feedback for sess. done, if non-nil, runs on the worker
// goroutine after the feedback is stored or the attempt fails.
func (s *Service) Request(ctx context.Context, sess Session, done func(Outcome)) error {
	if sess.Feedback != nil {
		return ErrFeedbackExists
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServiceClosed
	}
	job := feedbackJob{ctx: context.WithoutCancel(ctx), session: sess, done: done}
	select {
	case s.pending <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Evaluate runs one request synchronously: evaluate, then store.
func (s *Service) Evaluate(ctx context.Context, sess Session) (Feedback, error) {
	if sess.Feedback != nil {
		return Feedback{}, ErrFeedbackExists
	}
	fb, err := s.provider.Evaluate(ctx, sess)
	if err != nil {
		return Feedback{}, err
	}
	if err := s.store.SaveFeedback(ctx, sess.ID, fb); err != nil {
		return Feedback{}, fmt.Errorf("store feedback for %s: %w", sess.ID, err)
	}
	return fb, nil
}

func (s *Service) work() {
	defer s.wg.Done()
	for job := range s.pending {
		fb, err := s.Evaluate(job.ctx, job.session)
		if err != nil {
			s.log.Warn("interview feedback failed", zap.String("interview_id", job.session.ID), zap.Error(err))
		} else {
			s.log.Info("interview feedback stored", zap.String("interview_id", job.session.ID))
		}
		if job.done != nil {
			job.done(Outcome{SessionID: job.session.ID, Feedback: fb, Err: err})
		}
	}
}

// Close stops accepting requests and waits for queued ones to finish.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.pending)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
