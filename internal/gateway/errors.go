package gateway

import "fmt"

// ErrorKind classifies normalized API failures so callers can branch on
// them with a type switch instead of matching message strings.
type ErrorKind int

const (
	// KindValidation is a client-side rejection; no network call was made.
	KindValidation ErrorKind = iota
	// KindTransport means the request never produced a server response
	// (offline, DNS failure, connection reset).
	KindTransport
	// KindTimeout means the bounded request deadline elapsed. Kept
	// distinct from KindTransport so screens can word it differently.
	KindTimeout
	// KindServer is a non-2xx response with a structured server message.
	KindServer
)

// APIError is the single error shape that leaves the gateway. Raw
// transport errors never reach callers unwrapped.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Fields     map[string]string
	Cause      error
}

func (apiError *APIError) Error() string {
	if apiError.Cause != nil {
		return fmt.Sprintf("%s: %v", apiError.Message, apiError.Cause)
	}
	return apiError.Message
}

func (apiError *APIError) Unwrap() error {
	return apiError.Cause
}

// NewValidationError builds a client-side validation failure for the
// given fields. It is used by callers that reject input before issuing
// any network call.
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

// IsRetryable reports whether re-pressing the action is a sensible
// recovery. Only transport-level failures qualify; server rejections
// need changed input and validation errors never left the client.
func (apiError *APIError) IsRetryable() bool {
	return apiError.Kind == KindTransport || apiError.Kind == KindTimeout
}
