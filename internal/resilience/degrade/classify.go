package degrade

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	apperrors "tourbook/pkg/errors"
)

// Sentinel wrappers let callers pre-classify an error instead of relying on
// the heuristics below. They take precedence over every other signal.
var (
	// ErrTransient marks a failure caused by a temporary infrastructure
	// condition. Operations failing this way are safe to replay.
	ErrTransient = errors.New("transient failure")

	// ErrPermanent marks a failure that will never succeed on retry.
	ErrPermanent = errors.New("permanent failure")
)

// Transient wraps err so Classify reports it retriable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Permanent wraps err so Classify reports it fatal.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Kind is the routing decision for a failure.
type Kind int

const (
	KindFatal Kind = iota
	KindRetriable
)

func (k Kind) String() string {
	if k == KindRetriable {
		return "retriable"
	}
	return "fatal"
}

// Messages that indicate a transient infrastructure condition when nothing
// more structured is available. Matched case-insensitively as substrings.
var transientPatterns = []string{
	"econnrefused",
	"econnreset",
	"connection refused",
	"connection reset",
	"broken pipe",
	"timeout",
	"timed out",
	"deadline exceeded",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"temporary failure",
	"service unavailable",
	"rate limit",
	"too many requests",
}

// Classify decides whether err is worth retrying. The checks run from the
// most to the least reliable signal: explicit sentinel wrappers, application
// error codes, typed network errors, then message-text heuristics. Anything
// unrecognized is fatal so programmer and validation errors never end up in
// the retry queue.
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}

	if errors.Is(err, ErrTransient) {
		return KindRetriable
	}
	if errors.Is(err, ErrPermanent) {
		return KindFatal
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		switch appErr.Code {
		case apperrors.CodeUnavailable, apperrors.CodeTimeout:
			return KindRetriable
		default:
			return KindFatal
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindRetriable
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return KindRetriable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindRetriable
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return KindRetriable
		}
	}
	return KindFatal
}
