package exporter

import "fmt"

// Process exit codes.
const (
	ExitOK           = 0
	ExitUsage        = 1
	ExitDependency   = 2
	ExitReadFailure  = 3
	ExitParseFailure = 4
	ExitNoEndpoints  = 5
)

// ExitError carries the process exit code out of RunE.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", e.Err, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func exitErr(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}
