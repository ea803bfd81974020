package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Rubric configuration errors (RUBRIC-001 to RUBRIC-099)
	ErrCodeRubricNotFound    ErrorCode = "RUBRIC-001"
	ErrCodeRubricInvalid     ErrorCode = "RUBRIC-002"
	ErrCodeRubricUnmarshal   ErrorCode = "RUBRIC-003"
	ErrCodeRubricUnknownType ErrorCode = "RUBRIC-004"
	ErrCodeRubricDuplicateID ErrorCode = "RUBRIC-005"
	ErrCodeRubricUnknownDep  ErrorCode = "RUBRIC-006"
	ErrCodeRubricCyclicDep   ErrorCode = "RUBRIC-007"

	// Build errors (BUILD-001 to BUILD-099)
	ErrCodeBuildFailed         ErrorCode = "BUILD-001"
	ErrCodeBuildTimeout        ErrorCode = "BUILD-002"
	ErrCodeBuildContextMissing ErrorCode = "BUILD-003"

	// Execution errors (EXEC-001 to EXEC-099)
	ErrCodeExecDockerNotAvailable ErrorCode = "EXEC-001"
	ErrCodeExecImagePullFailed    ErrorCode = "EXEC-002"
	ErrCodeExecContainerFailed    ErrorCode = "EXEC-003"
	ErrCodeExecTimeout            ErrorCode = "EXEC-004"
	ErrCodeExecInvalidImageRef    ErrorCode = "EXEC-005"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// EvalError represents an enhanced error with code, suggestions, and documentation
type EvalError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *EvalError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *EvalError) Unwrap() error {
	return e.Cause
}

// IsConfiguration reports whether the error is a rubric configuration error.
// Configuration errors abort an evaluation before any test runs.
func (e *EvalError) IsConfiguration() bool {
	return strings.HasPrefix(string(e.Code), "RUBRIC-")
}

// IsBuild reports whether the error is a container build error
func (e *EvalError) IsBuild() bool {
	return strings.HasPrefix(string(e.Code), "BUILD-")
}

// New creates a new EvalError
func New(code ErrorCode, message string) *EvalError {
	return &EvalError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new EvalError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *EvalError {
	return &EvalError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *EvalError) WithSuggestion(suggestion string) *EvalError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *EvalError) WithSuggestions(suggestions ...string) *EvalError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *EvalError) WithDocs(url string) *EvalError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewRubricNotFoundError creates a rubric file not found error
func NewRubricNotFoundError(path string) *EvalError {
	return New(ErrCodeRubricNotFound, fmt.Sprintf("rubric file not found: %s", path)).
		WithSuggestion("Check if the rubric path is correct").
		WithSuggestion("Rubrics are looked up under rubrics/<scheme>/<repo>.json by default")
}

// NewRubricInvalidError creates a rubric validation error
func NewRubricInvalidError(details string) *EvalError {
	return New(ErrCodeRubricInvalid, fmt.Sprintf("invalid rubric: %s", details)).
		WithSuggestion("Every test needs a type and type-specific params").
		WithSuggestion("Check the rubric schema in the project README")
}

// NewUnknownTestTypeError creates an unknown test type error
func NewUnknownTestTypeError(testID, testType string) *EvalError {
	return New(ErrCodeRubricUnknownType, fmt.Sprintf("test %q has unknown type %q", testID, testType)).
		WithSuggestion("Valid types: commands_exist, envvar_set, dirs_exist, files_exist, file_contains, run_command, output_contains")
}

// NewUnknownDependencyError creates an unresolvable requires reference error
func NewUnknownDependencyError(testID, depID string) *EvalError {
	return New(ErrCodeRubricUnknownDep, fmt.Sprintf("test %q requires %q which is not defined in the rubric", testID, depID)).
		WithSuggestion("Check the requires list for typos").
		WithSuggestion("Referenced tests must declare an explicit id")
}

// NewCyclicDependencyError creates a dependency cycle error
func NewCyclicDependencyError(cycle []string) *EvalError {
	return New(ErrCodeRubricCyclicDep, fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> "))).
		WithSuggestion("Remove one of the requires edges to break the cycle")
}

// NewBuildFailedError creates a docker build failure error
func NewBuildFailedError(dockerfile string, cause error) *EvalError {
	return Wrap(ErrCodeBuildFailed, fmt.Sprintf("docker build failed for %s", dockerfile), cause).
		WithSuggestion("Inspect build_stderr in the evaluation report").
		WithSuggestion("Try building the dockerfile manually with 'docker build'")
}

// NewBuildTimeoutError creates a docker build timeout error
func NewBuildTimeoutError(dockerfile string, seconds float64) *EvalError {
	return New(ErrCodeBuildTimeout, fmt.Sprintf("docker build timed out after %.0fs for %s", seconds, dockerfile)).
		WithSuggestion("Increase the build timeout in .envgauge/config.yaml")
}

// NewDockerNotAvailableError creates a Docker not available error
func NewDockerNotAvailableError() *EvalError {
	return New(ErrCodeExecDockerNotAvailable, "Docker is not available").
		WithSuggestion("Install Docker Desktop or Docker Engine").
		WithSuggestion("Make sure the Docker daemon is running").
		WithSuggestion("Run 'docker version' to verify the installation").
		WithDocs("https://docs.docker.com/get-docker/")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *EvalError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *EvalError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
