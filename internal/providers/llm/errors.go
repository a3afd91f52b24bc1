package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// ErrorKind tells the UI which of the few failure messages to show.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindQuota     ErrorKind = "quota"
	KindMalformed ErrorKind = "malformed_response"
	KindService   ErrorKind = "service"
)

// ErrEmptyResponse is returned when the model answered without any text part.
var ErrEmptyResponse = errors.New("no text in response")

// Error is a failed generate call. Status is the upstream HTTP status when one
// was received, zero otherwise.
type Error struct {
	Kind     ErrorKind
	Provider string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s error (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or "" if err is not a classified *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message is the user-visible text for a failed call.
func Message(kind ErrorKind) string {
	switch kind {
	case KindNetwork:
		return "Could not reach the model service. Check your connection and try again."
	case KindAuth:
		return "The API key was rejected by the model service."
	case KindQuota:
		return "The model service quota is exhausted. Try again later."
	case KindMalformed:
		return "The model service returned a response without any text."
	default:
		return "The model service returned an error."
	}
}

func statusKind(code int, body string) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusBadRequest && strings.Contains(body, "API_KEY_INVALID"):
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindQuota
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindNetwork
	default:
		return KindService
	}
}

func grpcKind(c codes.Code) ErrorKind {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuth
	case codes.ResourceExhausted:
		return KindQuota
	case codes.Unavailable, codes.DeadlineExceeded:
		return KindNetwork
	default:
		return KindService
	}
}

// classify wraps an error coming out of an SDK or transport call.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}
	out := &Error{Provider: provider, Kind: KindService, Err: err}

	var apiErr *apierror.APIError
	var gErr *googleapi.Error
	var netErr net.Error
	switch {
	case errors.Is(err, ErrEmptyResponse):
		out.Kind = KindMalformed
	case errors.As(err, &apiErr) && apiErr.HTTPCode() > 0:
		out.Status = apiErr.HTTPCode()
		out.Kind = statusKind(out.Status, apiErr.Reason())
	case errors.As(err, &apiErr) && apiErr.GRPCStatus() != nil:
		out.Kind = grpcKind(apiErr.GRPCStatus().Code())
		if apiErr.Reason() == "API_KEY_INVALID" {
			out.Kind = KindAuth
		}
	case errors.As(err, &gErr):
		out.Status = gErr.Code
		out.Kind = statusKind(gErr.Code, gErr.Message+" "+gErr.Body)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		out.Kind = KindNetwork
	case errors.As(err, &netErr):
		out.Kind = KindNetwork
	}
	return out
}
