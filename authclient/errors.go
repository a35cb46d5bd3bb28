package authclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/oauth2"
)

// APIError is a non-2xx answer from the auth API.
type APIError struct {
	Op         string // e.g. "POST /token"
	StatusCode int
	Detail     string // "detail" field of the error body, if any
	kind       error  // one of the internal/errors sentinels
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *APIError) Unwrap() error {
	return e.kind
}

func newAPIError(op string, statusCode int, body []byte, kind error) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: statusCode,
		Detail:     parseDetail(body),
		kind:       kind,
	}
}

func parseDetail(body []byte) string {
	var er oauth2.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		return er.Detail
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// classify maps an HTTP status to the error taxonomy. rejected is the sentinel used
// when the server refuses the presented credential; the token endpoints also answer
// 400 for a missing credential, so badRequestRejects folds 400 into rejected.
func classify(statusCode int, rejected error, badRequestRejects bool) error {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return rejected
	case statusCode == http.StatusBadRequest && badRequestRejects:
		return rejected
	case statusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	default:
		return apperrors.ErrUnexpected
	}
}
