package exitcode

import (
	"os"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates all tests passed
	Success = 0

	// GeneralError indicates test failures or an evaluation error,
	// including rubric configuration problems and image build failures
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// Interrupted indicates the run was aborted by the user (SIGINT)
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode returns the exit code for an error. Every
// evaluation-time error exits 1 so scripts can branch on a single
// failure code; interrupts are handled by the caller.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "All tests passed"
	case GeneralError:
		return "Test failures or evaluation error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case Interrupted:
		return "Interrupted by user"
	default:
		return "Unknown error"
	}
}
