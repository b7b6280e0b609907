package syncer

import "errors"

// Run outcomes. Each maps to its own process exit status.
var (
	ErrActivityAuth = errors.New("activity platform authentication failed")
	ErrSourceAuth   = errors.New("source platform authentication failed")
	ErrFetch        = errors.New("fetch failed, nothing synced")
	ErrUpdate       = errors.New("one or more activity updates failed")
)

const (
	ExitOK           = 0
	ExitConfig       = 1
	ExitActivityAuth = 2
	ExitSourceAuth   = 3
	ExitFetch        = 4
	ExitUpdate       = 5
)

// ExitCode maps the error returned by Runner.Run to an exit status. Errors
// from outside the run count as configuration errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrActivityAuth):
		return ExitActivityAuth
	case errors.Is(err, ErrSourceAuth):
		return ExitSourceAuth
	case errors.Is(err, ErrFetch):
		return ExitFetch
	case errors.Is(err, ErrUpdate):
		return ExitUpdate
	default:
		return ExitConfig
	}
}
