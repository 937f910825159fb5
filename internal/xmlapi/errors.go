package xmlapi

import (
	"errors"
	"fmt"
	"strconv"
)

// Result values of header/response/result. ResultSuccess is the only one
// that marks a call as successful.
const (
	ResultSuccess = "SUCCESS"
	ResultFailure = "FAILURE"
)

// ErrMalformedResponse is wrapped by errors for responses that are not
// well-formed XML or carry no header/response/result element.
var ErrMalformedResponse = errors.New("malformed XML API response")

// maxErrorBody bounds how much of a response body Error() prints.
const maxErrorBody = 512

// TransportError is returned when the service answers with a status outside
// 200-299. The body is kept verbatim.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return e.Result()
	}
	return e.Result() + ": " + body
}

// Result returns the status in the "HTTP <code>" form used in place of an
// API result code.
func (e *TransportError) Result() string {
	return "HTTP " + strconv.Itoa(e.StatusCode)
}

// APIError is returned when the service answers 2xx but the envelope result
// is not SUCCESS. Result, Reason and ExceptionID are copied from the
// response unchanged.
type APIError struct {
	Operation   string
	Result      string
	Reason      string
	ExceptionID string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s returned %s", e.Operation, e.Result)
	if e.Operation == "" {
		msg = "request returned " + e.Result
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.ExceptionID != "" {
		msg += " (exception " + e.ExceptionID + ")"
	}
	return msg
}

// IsAPIResult reports whether err is an *APIError with the given result.
func IsAPIResult(err error, result string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Result == result
}

