package survey

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/signify-health/signify-client/internal/models"
)

// State is the engine's position in the question flow.
type State int

const (
	// StateEmpty is terminal: the loaded survey has no questions.
	StateEmpty State = iota
	// StateAtQuestion means the engine is waiting for an answer.
	StateAtQuestion
	// StateCompleted means every question has been answered.
	StateCompleted
)

// Value is a validated answer, tagged with its kind. Wire rendering is
// deferred to the submission boundary so validation stays type-safe;
// String is for display only.
type Value interface {
	fmt.Stringer
	wireText() string
}

// YesNo is a yes/no answer.
type YesNo bool

func (v YesNo) wireText() string {
	if v {
		return "yes"
	}
	return "no"
}

func (v YesNo) String() string { return v.wireText() }

// Number is a positive integer answer.
type Number int

func (v Number) wireText() string { return strconv.Itoa(int(v)) }

func (v Number) String() string { return v.wireText() }

// FreeText is a non-empty free-text answer, already trimmed.
type FreeText string

func (v FreeText) wireText() string { return string(v) }

func (v FreeText) String() string { return v.wireText() }

// Choice is a selected option of a single-choice question.
type Choice struct {
	OptionID string
	Text     string
}

func (v Choice) wireText() string { return v.Text }

func (v Choice) String() string { return v.wireText() }

// ValidationError rejects one raw input; the engine state is unchanged
// and the caller should re-prompt.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

var (
	// ErrCompleted is returned by Answer once the session has completed;
	// a completed session never submits twice.
	ErrCompleted = errors.New("survey session already completed")

	// ErrEmptySurvey is returned by Answer when the survey has no
	// questions. Empty is a terminal state.
	ErrEmptySurvey = errors.New("survey has no questions")
)

// Submitter posts the completed response.
type Submitter interface {
	Submit(ctx context.Context, resp *models.SurveyResponse) error
}

// Engine drives one survey session: current position, per-question
// answers, validation, navigation and completion. Each engine is owned
// by a single caller; calls are not safe for concurrent use.
type Engine struct {
	survey    *Survey
	user      models.AuthUser
	submitter Submitter

	pos       int
	answers   map[string]Value
	state     State
	submitted bool
}

// NewEngine starts a session over a normalized survey. The user's
// location triple is captured by value here, so a logout during a
// pending submission cannot orphan the response.
func NewEngine(sv *Survey, user models.AuthUser, submitter Submitter) *Engine {
	e := &Engine{
		survey:    sv,
		user:      user,
		submitter: submitter,
		answers:   make(map[string]Value, len(sv.Questions)),
	}
	if len(sv.Questions) == 0 {
		e.state = StateEmpty
	} else {
		e.state = StateAtQuestion
	}
	return e
}

// State returns the current engine state.
func (e *Engine) State() State { return e.state }

// Position returns the zero-based index of the current question.
func (e *Engine) Position() int { return e.pos }

// Total returns the number of questions in the session.
func (e *Engine) Total() int { return len(e.survey.Questions) }

// Current returns the question awaiting an answer. ok is false when the
// session is empty or completed.
func (e *Engine) Current() (Question, bool) {
	if e.state != StateAtQuestion {
		return Question{}, false
	}
	return e.survey.Questions[e.pos], true
}

// Answered returns the recorded answer for a question id, if any. Lets
// the UI show the prior value after Back.
func (e *Engine) Answered(questionID string) (Value, bool) {
	v, ok := e.answers[questionID]
	return v, ok
}

// Answer validates raw against the current question's kind. Invalid
// input returns *ValidationError and changes nothing. Valid input
// records the answer (overwriting any earlier one) and advances; the
// final answer completes the session and submits the response.
func (e *Engine) Answer(ctx context.Context, raw string) error {
	if e.state == StateEmpty {
		return ErrEmptySurvey
	}
	if e.state == StateCompleted {
		return ErrCompleted
	}
	q := e.survey.Questions[e.pos]
	value, err := parseAnswer(q, raw)
	if err != nil {
		return err
	}
	e.answers[q.ID] = value
	if e.pos+1 < len(e.survey.Questions) {
		e.pos++
		return nil
	}
	e.state = StateCompleted
	return e.submit(ctx)
}

// Back moves to the previous question, keeping its recorded answer in
// place for re-editing. Reports false at the first question.
func (e *Engine) Back() bool {
	if e.state != StateAtQuestion || e.pos == 0 {
		return false
	}
	e.pos--
	return true
}

// Retry re-attempts submission after a failed completion. It errors
// before completion and is a no-op once a submission has been accepted;
// the latch only stays open while the response was never accepted.
func (e *Engine) Retry(ctx context.Context) error {
	if e.state != StateCompleted {
		return errors.New("survey session not completed")
	}
	return e.submit(ctx)
}

// submit is the single-use completion gate: once a submission succeeds
// the latch closes and no path can post the response again.
func (e *Engine) submit(ctx context.Context) error {
	if e.submitted {
		return nil
	}
	if err := e.submitter.Submit(ctx, e.buildResponse()); err != nil {
		return err
	}
	e.submitted = true
	return nil
}

// buildResponse renders the answers map into the wire payload, in
// question order. This is the only place answer values become text.
func (e *Engine) buildResponse() *models.SurveyResponse {
	resp := &models.SurveyResponse{
		SurveyID: e.survey.ID,
		Country:  e.user.Country,
		District: e.user.District,
		Sector:   e.user.Sector,
		Answers:  make([]models.Answer, 0, len(e.answers)),
	}
	for _, q := range e.survey.Questions {
		v, ok := e.answers[q.ID]
		if !ok {
			continue
		}
		resp.Answers = append(resp.Answers, models.Answer{
			QuestionID: q.ID,
			AnswerText: v.wireText(),
		})
	}
	return resp
}

// parseAnswer validates one raw input against a question's kind and
// returns the tagged value.
func parseAnswer(q Question, raw string) (Value, error) {
	trimmed := strings.TrimSpace(raw)
	switch q.Kind {
	case KindYesNo:
		switch strings.ToLower(trimmed) {
		case "yes":
			return YesNo(true), nil
		case "no":
			return YesNo(false), nil
		}
		return nil, &ValidationError{QuestionID: q.ID, Reason: `answer must be "yes" or "no"`}
	case KindNumber:
		n, err := strconv.Atoi(trimmed)
		if err != nil || n <= 0 {
			return nil, &ValidationError{QuestionID: q.ID, Reason: "answer must be a positive number"}
		}
		return Number(n), nil
	case KindChoice:
		for _, opt := range q.Options {
			if opt.Text == trimmed {
				return Choice{OptionID: opt.ID, Text: opt.Text}, nil
			}
		}
		return nil, &ValidationError{QuestionID: q.ID, Reason: "answer must match one of the listed options"}
	default:
		if trimmed == "" {
			return nil, &ValidationError{QuestionID: q.ID, Reason: "answer must not be empty"}
		}
		return FreeText(trimmed), nil
	}
}
