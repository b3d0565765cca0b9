package survey

import (
	"context"
	"fmt"
	"net/http"

	"github.com/signify-health/signify-client/internal/models"
)

// SubmitError wraps the gateway failure behind a final POST /responses.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return fmt.Sprintf("submit response: %v", e.Err) }
func (e *SubmitError) Unwrap() error { return e.Err }

// SubmitService posts completed survey responses. It implements
// Submitter for the engine.
type SubmitService struct {
	gw Gateway
}

// NewSubmitService builds a submitter over the gateway.
func NewSubmitService(gw Gateway) *SubmitService {
	return &SubmitService{gw: gw}
}

// Submit posts the response. No retries; recovery is the caller's
// explicit Retry.
func (s *SubmitService) Submit(ctx context.Context, resp *models.SurveyResponse) error {
	if err := s.gw.JSON(ctx, http.MethodPost, "/responses", resp, nil); err != nil {
		return &SubmitError{Err: err}
	}
	return nil
}
