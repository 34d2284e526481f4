package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxEnvelopeSize caps envelopes decoded in memory. Relayed bodies are
// streamed and not subject to this limit.
const maxEnvelopeSize = 4 << 20

// Rejection is an upstream non-2xx answer.
type Rejection struct {
	Status  int
	Message string
}

func (r *Rejection) Error() string {
	if r.Message == "" {
		return http.StatusText(r.Status)
	}
	return r.Message
}

// Result is the decoded form of an upstream envelope: either Ok(value) or
// Err(rejection). Callers branch on it explicitly.
type Result[T any] struct {
	status    int
	value     T
	rejection *Rejection
}

// Ok builds a successful result.
func Ok[T any](status int, v T) Result[T] {
	return Result[T]{status: status, value: v}
}

// Err builds a rejected result.
func Err[T any](status int, message string) Result[T] {
	return Result[T]{status: status, rejection: &Rejection{Status: status, Message: message}}
}

// Status is the HTTP status upstream answered with.
func (r Result[T]) Status() int { return r.status }

// OK reports whether upstream answered 2xx.
func (r Result[T]) OK() bool { return r.rejection == nil }

// Value returns the data payload and whether the result is Ok.
func (r Result[T]) Value() (T, bool) { return r.value, r.rejection == nil }

// Rejection returns the rejection, or nil for an Ok result.
func (r Result[T]) Rejection() *Rejection { return r.rejection }

type envelope[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

// Decode reads an envelope from resp and closes its body. A 2xx answer whose
// body is not a valid envelope is an error; a non-2xx answer with an
// unreadable body becomes a Rejection carrying the status text.
func Decode[T any](resp *http.Response) (Result[T], error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeSize))
	if err != nil {
		return Result[T]{}, fmt.Errorf("reading upstream response: %w", err)
	}

	var env envelope[T]
	var decodeErr error
	if len(raw) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if decodeErr == nil {
			msg = env.Error
		}
		return Err[T](resp.StatusCode, msg), nil
	}
	if decodeErr != nil {
		return Result[T]{}, fmt.Errorf("decoding upstream envelope: %w", decodeErr)
	}
	return Ok(resp.StatusCode, env.Data), nil
}
