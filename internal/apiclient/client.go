package apiclient

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
)

// AcceptLanguage is sent on every request; the API localizes its messages.
const AcceptLanguage = "fr-FR,fr;q=0.9,en;q=0.8"

// Error codes carried by APIError.
const (
	CodeValidation     = "validationError"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "notFound"
	CodeServerError    = "serverError"
	CodeAPIUnavailable = "apiUnavailable"
	CodeGeneric        = "generic"
	CodeNetworkError   = "networkError"
)

// APIError is returned for every failed call. StatusCode is 0 when the
// request never got a response.
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"status"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// LocalizedMessage is the message shown to users.
func (e *APIError) LocalizedMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Une erreur est survenue"
}

// IsNotFound reports whether err is an APIError for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// CodeForStatus maps an HTTP status to an APIError code.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusInternalServerError:
		return CodeServerError
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return CodeAPIUnavailable
	}
	return CodeGeneric
}

// Client talks to the furniture inventory REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL (e.g. "http://localhost:5000/api").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends one request. A nil out, or a 204 response, skips decoding.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", AcceptLanguage)

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			Code:       CodeGeneric,
			Message:    "invalid response body: " + err.Error(),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return nil
}

func parseError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Code:       CodeForStatus(resp.StatusCode),
		Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		StatusCode: resp.StatusCode,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var payload map[string]any
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Details = payload
			if code, ok := payload["error_code"].(string); ok && code != "" {
				apiErr.Code = code
			}
			if msg, ok := payload["message"].(string); ok && msg != "" {
				apiErr.Message = msg
			}
			return apiErr
		}
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

func escape(s string) string { return url.PathEscape(s) }
