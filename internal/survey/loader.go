// Package survey holds the client-side survey session: loading and
// normalizing the active survey, walking the user through its questions,
// and submitting the completed response.
package survey

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/signify-health/signify-client/internal/models"
)

// Gateway performs authenticated JSON round-trips.
type Gateway interface {
	JSON(ctx context.Context, method, endpoint string, body, out any) error
}

// Kind is a canonical question kind. Every backend type tag normalizes
// onto exactly one of these four.
type Kind int

const (
	KindYesNo Kind = iota
	KindNumber
	KindChoice
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindYesNo:
		return "yes/no"
	case KindNumber:
		return "number"
	case KindChoice:
		return "single-choice"
	default:
		return "free-text"
	}
}

// Question is a normalized survey question as the engine consumes it.
type Question struct {
	ID       string
	Text     string
	Kind     Kind
	Required bool
	Options  []Option
}

// Option is one selectable answer of a single-choice question.
type Option struct {
	ID   string
	Text string
}

// Survey is the normalized question set for one engine session.
type Survey struct {
	ID        string
	Title     string
	Questions []Question
}

// Loader fetches and normalizes surveys.
type Loader struct {
	gw Gateway
}

// NewLoader builds a loader over the gateway.
func NewLoader(gw Gateway) *Loader {
	return &Loader{gw: gw}
}

// LoadActive fetches the surveys visible to the user's location and
// returns the first active one in backend order, normalized. A (nil,
// nil) result means no survey is currently active, a legitimate steady
// state rather than a failure.
func (l *Loader) LoadActive(ctx context.Context, user models.AuthUser) (*Survey, error) {
	params := url.Values{}
	params.Set("country", user.Country)
	params.Set("district", user.District)
	params.Set("sector", user.Sector)

	var fetched []models.Survey
	if err := l.gw.JSON(ctx, http.MethodGet, "/surveys?"+params.Encode(), nil, &fetched); err != nil {
		return nil, err
	}
	for _, sv := range fetched {
		if sv.Status == models.StatusActive {
			return normalize(sv), nil
		}
	}
	return nil, nil
}

// LoadByID fetches and normalizes a single survey.
func (l *Loader) LoadByID(ctx context.Context, id string) (*Survey, error) {
	var fetched models.Survey
	if err := l.gw.JSON(ctx, http.MethodGet, "/surveys/"+url.PathEscape(id), nil, &fetched); err != nil {
		return nil, err
	}
	return normalize(fetched), nil
}

// normalize sorts questions into presentation order and maps backend
// type tags onto canonical kinds.
func normalize(sv models.Survey) *Survey {
	questions := make([]models.Question, len(sv.Questions))
	copy(questions, sv.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderIndex < questions[j].OrderIndex
	})

	out := &Survey{ID: sv.SurveyID, Title: sv.Title, Questions: make([]Question, 0, len(questions))}
	for _, q := range questions {
		nq := Question{
			ID:       q.QuestionID,
			Text:     q.QuestionText,
			Kind:     normalizeKind(q.QuestionType),
			Required: q.IsRequired,
		}
		for _, opt := range q.Options {
			nq.Options = append(nq.Options, Option{ID: opt.OptionID, Text: opt.OptionText})
		}
		// A choice question without options cannot be answered as a
		// choice; degrade to free text like any other schema drift.
		if nq.Kind == KindChoice && len(nq.Options) == 0 {
			nq.Kind = KindText
		}
		out.Questions = append(out.Questions, nq)
	}
	return out
}

// normalizeKind maps a backend question-type tag onto a canonical kind.
// Unknown tags become free text so schema drift never blocks the flow.
func normalizeKind(tag string) Kind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "yesno", "yes_no", "yes/no", "boolean", "bool":
		return KindYesNo
	case "number", "numeric", "integer", "int":
		return KindNumber
	case "single_choice", "multiple_choice", "choice", "select":
		return KindChoice
	case "text", "free_text", "freetext", "open", "open_ended":
		return KindText
	default:
		return KindText
	}
}
