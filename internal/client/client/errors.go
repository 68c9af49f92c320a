package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput marks a request rejected before it was sent.
	ErrInvalidInput = errors.New("invalid input")
)

// APIError is a non-2xx, non-401 response of the remote API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// newAPIError extracts the server message from a JSON error body. Both
// {"message": "..."} and {"message": ["...", "..."]} are understood, with
// {"error": "..."} as a fallback; otherwise the status text is used.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body, Message: http.StatusText(status)}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	var single string
	var many []string
	switch {
	case json.Unmarshal(payload.Message, &single) == nil && single != "":
		e.Message = single
	case json.Unmarshal(payload.Message, &many) == nil && len(many) > 0:
		e.Message = strings.Join(many, "; ")
	case payload.Error != "":
		e.Message = payload.Error
	}
	return e
}

// ErrorKind groups errors by how the caller recovers from them.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindAuth is fatal to the session and handled globally.
	KindAuth
	// KindValidation is a 4xx other than 401, or input rejected locally,
	// shown with its message.
	KindValidation
	// KindServer covers 5xx and transport failures, shown generically.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	default:
		return "server"
	}
}

// Classify maps an error returned by HTTPClient to its ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindAuth
	}
	if errors.Is(err, ErrInvalidInput) {
		return KindValidation
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return KindValidation
		}
		return KindServer
	}
	return KindServer
}

// UserMessage is the text a user should see for err.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindAuth:
		return "Your session has expired, please log in again"
	case KindValidation:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.Message
		}
		return err.Error()
	default:
		return "Request failed, please try again later"
	}
}
