package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Failure kinds of the text-generation service.
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrMalformedResponse  = errors.New("malformed response")
)

// AdapterError wraps provider errors with status metadata and a failure kind.
type AdapterError struct {
	Adapter   string
	Status    int
	Kind      error
	Temporary bool
	Err       error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return "adapter error"
	}
	kind := "adapter error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	msg := fmt.Sprintf("%s: %s", e.Adapter, kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AdapterError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case status >= 500 && status <= 599:
		return ErrServiceUnavailable
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrServiceUnavailable
	case status == http.StatusRequestTimeout:
		return ErrServiceUnavailable
	default:
		return ErrMalformedResponse
	}
}

func statusError(adapterName string, status int, err error) *AdapterError {
	kind := classifyStatus(status)
	return &AdapterError{
		Adapter:   adapterName,
		Status:    status,
		Kind:      kind,
		Temporary: status == http.StatusTooManyRequests || status >= 500,
		Err:       err,
	}
}

// transportError classifies an error raised before any response was decoded.
func transportError(adapterName string, err error) *AdapterError {
	temporary := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		temporary = true
	}
	return &AdapterError{
		Adapter:   adapterName,
		Kind:      ErrServiceUnavailable,
		Temporary: temporary,
		Err:       err,
	}
}

func malformedError(adapterName string, format string, args ...any) *AdapterError {
	return &AdapterError{
		Adapter: adapterName,
		Kind:    ErrMalformedResponse,
		Err:     fmt.Errorf(format, args...),
	}
}

// IsTransient reports whether rerunning the failed work may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		if adapterErr.Temporary {
			return true
		}
		if adapterErr.Status == http.StatusTooManyRequests || (adapterErr.Status >= 500 && adapterErr.Status <= 599) {
			return true
		}
	}
	return false
}
