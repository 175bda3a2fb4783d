package retry

import (
	"fmt"
	"time"
)

const (
	// DefaultAttempts is the number of attempts made by DefaultPolicy.
	DefaultAttempts = 10
	// DefaultInterval is the pause between two attempts of DefaultPolicy.
	// Long enough for a concurrent lock holder to finish a snapshot write,
	// short enough to not matter for a single operation.
	DefaultInterval = time.Millisecond
)

// Policy describes how often an operation is attempted and how long to wait
// between two attempts.
type Policy struct {
	// Attempts is the maximum number of attempts. Values < 1 are treated as 1.
	Attempts int
	// Interval is the fixed pause between two attempts. There is no pause
	// before the first attempt.
	Interval time.Duration
	// OnRetry is called after every failed attempt that is followed by
	// another attempt. attempt is 1-based. May be nil.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns the policy used when nothing else is configured.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: DefaultAttempts,
		Interval: DefaultInterval,
	}
}

// WithHook returns a copy of p whose OnRetry calls hook after p's own hook.
// A nil hook returns p unchanged.
func (p Policy) WithHook(hook func(attempt int, err error)) Policy {
	if hook == nil {
		return p
	}
	prev := p.OnRetry
	p.OnRetry = func(attempt int, err error) {
		if prev != nil {
			prev(attempt, err)
		}
		hook(attempt, err)
	}
	return p
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// ExhaustedError is returned by Do when every attempt failed.
type ExhaustedError struct {
	Attempts int   // number of attempts made
	Err      error // error of the last attempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs op until it succeeds or the policy's attempts are used up.
// On success nil is returned, otherwise an *ExhaustedError wrapping the
// error of the last attempt.
func Do(p Policy, op func() error) error {
	maxAttempts := p.attempts()

	var lastErr error
	for i := 1; i <= maxAttempts; i++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if i == maxAttempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(i, lastErr)
		}
		if p.Interval > 0 {
			time.Sleep(p.Interval)
		}
	}

	return &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
}
