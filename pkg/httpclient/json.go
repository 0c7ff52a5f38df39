package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-newsdesk/pkg/async"
)

// ErrInvalidURL is returned before any I/O when a request URL cannot be used.
var ErrInvalidURL = errors.New("invalid request url")

// StatusError reports a non-2xx response or a transport failure. Transport
// failures carry Code 0 and the cause in Err.
type StatusError struct {
	Code     int
	Response Response
	Err      error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed with status code %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("request failed with status code %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// DecodeError reports a 2xx response whose body is not valid JSON for the target type.
type DecodeError struct {
	Response Response
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GetJSON issues a GET and resolves with the JSON-decoded body. Each call runs
// on its own goroutine; the future resolves exactly once.
func GetJSON[T any](ctx context.Context, client Client, rawURL string, headers map[string]string) *async.Future[T] {
	if err := validate(client, rawURL); err != nil {
		return async.Failed[T](err)
	}
	ctx = ensureContext(ctx)
	return async.Go(func() (T, error) {
		resp, err := client.Get(ctx, rawURL, headers)
		return decodeResponse[T](resp, err)
	})
}

// PostJSON marshals body as JSON, POSTs it with headers and resolves with the
// JSON-decoded response body.
func PostJSON[T any](ctx context.Context, client Client, rawURL string, body any, headers map[string]string) *async.Future[T] {
	if err := validate(client, rawURL); err != nil {
		return async.Failed[T](err)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return async.Failed[T](fmt.Errorf("encode request body: %w", err))
	}
	ctx = ensureContext(ctx)
	return async.Go(func() (T, error) {
		resp, err := client.Post(ctx, rawURL, payload, headers)
		return decodeResponse[T](resp, err)
	})
}

func validate(client Client, rawURL string) error {
	if client == nil {
		return errors.New("http client is nil")
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func decodeResponse[T any](resp Response, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, &StatusError{Code: 0, Err: err}
	}
	if resp == nil {
		return zero, &StatusError{Code: 0, Err: errors.New("empty response")}
	}
	if resp.StatusCode()/100 != 2 {
		return zero, &StatusError{Code: resp.StatusCode(), Response: resp}
	}

	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return zero, &DecodeError{Response: resp, Err: err}
	}
	return out, nil
}
