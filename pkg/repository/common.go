package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// errStopRetry is matched by criticalError to stop repeater from retrying
var errStopRetry = errors.New("stop retry")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error { return e.err }

func (e *criticalError) Is(target error) bool { return target == errStopRetry }

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// withRetry runs fn, retrying with backoff on lock errors only.
// Non-lock errors must be wrapped in criticalError by fn.
func withRetry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, fn, errStopRetry)
	var critical *criticalError
	if errors.As(err, &critical) {
		return critical.err
	}
	return err
}
