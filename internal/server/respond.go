package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/interview"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/studylog"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// errBadRequest marks client input errors found by the handlers.
var errBadRequest = errors.New("bad request")

// errUpstream marks failures of an AI collaborator.
var errUpstream = errors.New("upstream failure")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

type errorBody struct {
	Error      string `json:"error"`
	Unanswered []int  `json:"unanswered,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v and validates its struct tags.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("decode body: %v", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		verrs     validator.ValidationErrors
		genErr    *exam.GenerationError
		persist   *exam.PersistenceError
		rateLimit *llm.ErrRateLimit
	)
	switch {
	case errors.Is(err, exam.ErrIncompleteSession),
		errors.Is(err, exam.ErrInvalidState),
		errors.Is(err, interview.ErrFeedbackExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, studylog.ErrInvalidEntry),
		errors.Is(err, exam.ErrUnknownOption),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, interview.ErrQueueFull), errors.Is(err, interview.ErrServiceClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &genErr), errors.Is(err, errUpstream):
		return http.StatusBadGateway
	case errors.As(err, &persist):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var incomplete *exam.IncompleteSessionError
	if errors.As(err, &incomplete) {
		body.Unanswered = incomplete.Unanswered
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeJSON(w, status, body)
}
