package web

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/report"
)

// APIError is the error body of every failed API call.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Error     *APIError `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PlanResponse is the body of a successful /api/plan call and of a websocket "plan" message.
type PlanResponse struct {
	ID          string        `json:"id"`
	Provider    string        `json:"provider"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Plan        string        `json:"plan"`
	Report      report.Report `json:"report"`
}

func newPlanResponse(res *plan.Result) PlanResponse {
	return PlanResponse{
		ID:          res.ID.String(),
		Provider:    res.Provider,
		GeneratedAt: res.GeneratedAt,
		Plan:        res.Plan,
		Report:      report.Parse(res.Plan),
	}
}

// newAPIError describes err for API clients. The raw error text goes into Details only
// when showDetails is set; validation messages are always shown since they are the user's to fix.
func newAPIError(err error, showDetails bool) (int, *APIError) {
	status, code := statusFor(err)
	apiErr := &APIError{Code: code}
	switch code {
	case ErrorValidation, ErrorBusy:
		apiErr.Message = err.Error()
	default:
		f := plan.DescribeFailure(err, showDetails)
		apiErr.Message = f.Message
		apiErr.Details = f.Detail
	}
	return status, apiErr
}

func respondError(c *gin.Context, status int, apiErr *APIError) {
	c.AbortWithStatusJSON(status, &errorResponse{
		Error:     apiErr,
		RequestID: requestIDFrom(c),
		Timestamp: time.Now(),
	})
}
