package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// StatusCode is 0 for transport errors and timeouts.
type CheckResult struct {
	Success    bool
	StatusCode int
	Message    string
}

// Checker performs a single check for a given target URL. Implementations
// never return an error: every failure is reported as an unsuccessful result.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
