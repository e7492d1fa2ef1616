package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rhinoxpay/rhinox-go/internal/config"
	"github.com/rhinoxpay/rhinox-go/internal/logger"
)

// Client is the single point of request construction and error
// normalization for the RhinoxPay API. It applies no retry policy;
// retries, if any, belong to the caller.
type Client struct {
	baseURL    string
	authToken  string
	logger     *logger.Logger
	httpClient *http.Client
}

// NewClient creates a new API gateway client
func NewClient(cfg *config.Config, logger *logger.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		authToken: cfg.AuthToken,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// serverErrorBody is the structured error payload the API returns on
// non-2xx responses.
type serverErrorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// Do issues one request against the configured base URL. The route is
// expanded with pathParams, query parameters with empty values are
// omitted entirely, and body (when non-nil) is serialized as JSON. A
// successful response is decoded into out when out is non-nil. Every
// failure comes back as a *APIError.
func (client *Client) Do(ctx context.Context, method, route string, pathParams, query map[string]string, body, out interface{}) error {
	path, err := ExpandRoute(route, pathParams)
	if err != nil {
		return NewValidationError(err.Error(), nil)
	}

	requestURL := client.baseURL + path
	if encoded := encodeQuery(query); encoded != "" {
		requestURL += "?" + encoded
	}

	var requestBody io.Reader
	if body != nil {
		payload, marshalError := json.Marshal(body)
		if marshalError != nil {
			return &APIError{
				Kind:    KindValidation,
				Message: "failed to encode request body",
				Cause:   marshalError,
			}
		}
		requestBody = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, requestBody)
	if err != nil {
		return &APIError{
			Kind:    KindTransport,
			Message: "failed to build request",
			Cause:   err,
		}
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.authToken != "" {
		request.Header.Set("Authorization", "Bearer "+client.authToken)
	}

	client.logger.Debugf("API request: %s %s", method, path)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return normalizeTransportError(err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return &APIError{
			Kind:    KindTransport,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return normalizeServerError(response.StatusCode, responseBody)
	}

	if out != nil && len(responseBody) > 0 {
		if unmarshalError := json.Unmarshal(responseBody, out); unmarshalError != nil {
			return &APIError{
				Kind:       KindServer,
				StatusCode: response.StatusCode,
				Message:    "failed to decode response body",
				Cause:      unmarshalError,
			}
		}
	}

	return nil
}

// encodeQuery serializes query parameters, omitting any parameter with
// an empty value so it is never sent as the literal string "undefined".
func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	for name, value := range query {
		if strings.TrimSpace(value) == "" {
			continue
		}
		values.Set(name, value)
	}
	return values.Encode()
}

// normalizeTransportError maps request failures to the transport or
// timeout kinds. Timeouts stay distinguishable from "server rejected".
func normalizeTransportError(err error) *APIError {
	kind := KindTransport
	message := "request failed to reach the server"

	var urlError *url.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlError) && urlError.Timeout()) {
		kind = KindTimeout
		message = "request timed out"
	}

	return &APIError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// normalizeServerError decodes the structured error payload from a
// non-2xx response. The server message is surfaced verbatim to keep
// user guidance accurate.
func normalizeServerError(statusCode int, body []byte) *APIError {
	var parsed serverErrorBody
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Message
	if message == "" {
		message = parsed.Error
	}
	if message == "" {
		message = fmt.Sprintf("server returned status %d", statusCode)
	}

	return &APIError{
		Kind:       KindServer,
		StatusCode: statusCode,
		Message:    message,
		Fields:     parsed.Fields,
	}
}

// WithTimeout derives a bounded context for a single call when the
// caller has not already applied a deadline.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
