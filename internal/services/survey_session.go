package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/client"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
)

type SessionState string

const (
	StateNoSurvey   SessionState = "no_survey"
	StateReady      SessionState = "ready"
	StateInProgress SessionState = "in_progress"
)

// FetchListener is notified exactly once when an accepted fetch completes.
type FetchListener func(success bool)

// PendingFetch is resolved when the fetch it represents completes.
type PendingFetch struct {
	done    chan struct{}
	success bool
}

func newPendingFetch() *PendingFetch {
	return &PendingFetch{done: make(chan struct{})}
}

// Done is closed once the fetch has completed and the session state is updated.
func (f *PendingFetch) Done() <-chan struct{} {
	return f.done
}

// Success reports the fetch outcome. It is only meaningful after Done is closed.
func (f *PendingFetch) Success() bool {
	select {
	case <-f.done:
		return f.success
	default:
		return false
	}
}

// Wait blocks until the fetch completes or ctx ends. Ending ctx does not cancel the fetch.
func (f *PendingFetch) Wait(ctx context.Context) (bool, error) {
	select {
	case <-f.done:
		return f.success, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// SessionStatus is a point-in-time view of the session used to gate display.
type SessionStatus struct {
	State     SessionState `json:"state"`
	Fetching  bool         `json:"fetching"`
	Ready     bool         `json:"ready"`
	Complete  bool         `json:"complete"`
	Skippable bool         `json:"skippable"`
	SurveyID  string       `json:"survey_id,omitempty"`
}

// SubmitResult is returned after a survey is handed to the delivery queue.
type SubmitResult struct {
	Payload        *models.SurveyPayload `json:"payload"`
	SuccessMessage string                `json:"success_message,omitempty"`
	ShowMessage    bool                  `json:"show_message"`
}

// SurveySession owns the survey lifecycle: a single-flight fetch, the current
// definition and the answer set of the survey being displayed. Construct one
// per process and share it by reference.
type SurveySession struct {
	client    client.SurveyClient
	gateway   *SubmissionGateway
	questions *validator.QuestionValidator
	log       *ServiceLogger

	mu         sync.Mutex
	inflight   *PendingFetch
	definition *models.SurveyDefinition
	answers    *models.AnswerSet
	submitting bool
}

func NewSurveySession(
	surveyClient client.SurveyClient,
	gateway *SubmissionGateway,
	v *validator.Validator,
	logger *slog.Logger,
) *SurveySession {
	return &SurveySession{
		client:    surveyClient,
		gateway:   gateway,
		questions: v.Question(),
		log: NewServiceLogger(logger, LogConfig{
			Service:   "survey-engine",
			Component: "survey_session",
		}),
	}
}

// FetchSurvey starts fetching a survey unless one is already in flight. A
// duplicate call is dropped: its listener is never invoked, and the returned
// PendingFetch is the one already in flight with accepted set to false.
func (s *SurveySession) FetchSurvey(ctx context.Context, listener FetchListener) (fetch *PendingFetch, accepted bool) {
	s.mu.Lock()
	if s.inflight != nil {
		fetch = s.inflight
		s.mu.Unlock()
		s.log.Logger().DebugContext(ctx, "Already fetching survey")
		return fetch, false
	}
	fetch = newPendingFetch()
	s.inflight = fetch
	s.mu.Unlock()

	s.log.Logger().InfoContext(ctx, "Started survey fetch")
	go s.runFetch(context.WithoutCancel(ctx), fetch, listener)
	return fetch, true
}

func (s *SurveySession) runFetch(ctx context.Context, fetch *PendingFetch, listener FetchListener) {
	start := time.Now()
	var def *models.SurveyDefinition

	defer func() {
		if r := recover(); r != nil {
			s.log.Logger().ErrorContext(ctx, "Survey fetch panicked", "panic", r)
			def = nil
		}
		s.completeFetch(ctx, fetch, def)
		if listener != nil {
			listener(fetch.success)
		}
	}()

	fetched, err := s.client.GetSurveyDefinition(ctx)
	switch {
	case err != nil:
		s.log.Logger().WarnContext(ctx, "Survey fetch failed", "error", err, "duration", time.Since(start))
	case fetched == nil:
		s.log.Logger().InfoContext(ctx, "No survey available", "duration", time.Since(start))
	default:
		def = fetched
		s.log.Logger().InfoContext(ctx, "Survey fetched",
			"survey_id", def.ID(),
			"questions", def.Len(),
			"duration", time.Since(start))
	}
}

// completeFetch publishes the fetch result and releases the single-flight slot.
func (s *SurveySession) completeFetch(ctx context.Context, fetch *PendingFetch, def *models.SurveyDefinition) {
	s.mu.Lock()
	from := s.stateLocked()
	if def != nil {
		s.definition = def
		s.answers = nil
	}
	s.inflight = nil
	fetch.success = def != nil
	to := s.stateLocked()
	s.mu.Unlock()

	if def != nil {
		s.log.LogStateTransition(ctx, def.ID(), from, to)
	}
	close(fetch.done)
}

// IsSurveyReady reports whether a survey definition is held.
func (s *SurveySession) IsSurveyReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.definition != nil
}

func (s *SurveySession) IsFetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

func (s *SurveySession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *SurveySession) stateLocked() SessionState {
	switch {
	case s.definition == nil:
		return StateNoSurvey
	case s.answers != nil:
		return StateInProgress
	default:
		return StateReady
	}
}

func (s *SurveySession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SessionStatus{
		State:    s.stateLocked(),
		Fetching: s.inflight != nil,
		Ready:    s.definition != nil,
	}
	if s.definition != nil {
		status.SurveyID = s.definition.ID()
		status.Skippable = !s.definition.IsRequired()
		status.Complete = validator.IsComplete(s.definition, s.answers)
	}
	return status
}

// Definition returns the current survey definition, if any.
func (s *SurveySession) Definition() (*models.SurveyDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.definition, s.definition != nil
}

// Show starts displaying the current survey with a fresh answer set.
func (s *SurveySession) Show(ctx context.Context) (*models.SurveyDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.definition == nil {
		return nil, ErrSurveyNotReady
	}
	from := s.stateLocked()
	s.answers = models.NewAnswerSet(s.definition.ID())
	s.log.LogStateTransition(ctx, s.definition.ID(), from, StateInProgress)
	return s.definition, nil
}

// SetAnswer is the single mutation entry point for the answer set. Invalid
// answers are rejected before reaching it. It returns whether the survey is
// complete after the change.
func (s *SurveySession) SetAnswer(ctx context.Context, index int, values ...string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answers == nil || s.submitting {
		return false, ErrSurveyNotInProgress
	}
	q, ok := s.definition.Question(index)
	if !ok {
		return false, fmt.Errorf("%w: index %d", ErrQuestionNotFound, index)
	}
	if err := s.questions.ValidateAnswer(q, values); err != nil {
		s.log.LogOperation(ctx, "set_answer", s.definition.ID(), 0, err)
		return false, err
	}

	s.answers.SetAnswer(index, values...)
	complete := validator.IsComplete(s.definition, s.answers)
	s.log.Logger().DebugContext(ctx, "Answer set", "question_index", index, "complete", complete)
	return complete, nil
}

// IsComplete reports whether every required question of the displayed survey is answered.
func (s *SurveySession) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validator.IsComplete(s.definition, s.answers)
}

func (s *SurveySession) IsSkippable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.definition != nil && !s.definition.IsRequired()
}

// Answers returns a snapshot of the answer set being edited.
func (s *SurveySession) Answers() (*models.AnswerSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answers == nil {
		return nil, false
	}
	return s.answers.Snapshot(), true
}

// Submit hands the completed survey to the delivery queue and resets the
// session so a new survey can be fetched. The queue is called without holding
// the session lock; answers can not change while a submit is running.
func (s *SurveySession) Submit(ctx context.Context) (*SubmitResult, error) {
	start := time.Now()
	s.mu.Lock()
	if s.answers == nil || s.submitting {
		s.mu.Unlock()
		return nil, ErrSurveyNotInProgress
	}
	def := s.definition
	if !validator.IsComplete(def, s.answers) {
		s.mu.Unlock()
		s.log.LogOperation(ctx, "submit", def.ID(), time.Since(start), ErrSurveyIncomplete)
		return nil, ErrSurveyIncomplete
	}
	answers := s.answers.Snapshot()
	s.submitting = true
	s.mu.Unlock()

	payload, err := s.gateway.Submit(ctx, def, answers)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.log.LogOperation(ctx, "submit", def.ID(), time.Since(start), err)
		return nil, err
	}
	// a fetch may have replaced the definition meanwhile
	cleaned := s.definition == def
	if cleaned {
		s.cleanupLocked()
	}
	s.mu.Unlock()

	result := &SubmitResult{Payload: payload}
	result.SuccessMessage, result.ShowMessage = def.SuccessText()

	s.log.LogOperation(ctx, "submit", def.ID(), time.Since(start), nil)
	if cleaned {
		s.log.LogStateTransition(ctx, def.ID(), StateInProgress, StateNoSurvey)
	}
	return result, nil
}

// Skip discards the survey without enqueueing anything. Required surveys can not be skipped.
func (s *SurveySession) Skip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.definition == nil {
		return ErrSurveyNotReady
	}
	if s.definition.IsRequired() {
		return ErrSurveyRequired
	}

	surveyID := s.definition.ID()
	from := s.stateLocked()
	s.cleanupLocked()
	s.log.LogStateTransition(ctx, surveyID, from, StateNoSurvey)
	return nil
}

// Cleanup discards the current definition and answers. It is idempotent and
// does not affect a fetch in flight.
func (s *SurveySession) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *SurveySession) cleanupLocked() {
	s.definition = nil
	s.answers = nil
}
