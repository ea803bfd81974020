package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeRubricNotFound, "test error message")

	if err.Code != ErrCodeRubricNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeRubricNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *EvalError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeRubricInvalid, "invalid rubric"),
			wantCode: "RUBRIC-002",
			wantMsg:  "invalid rubric",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "read failed: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, string(tt.err.Code)) {
				t.Errorf("error string %q should contain code %s", got, tt.wantCode)
			}
			if !strings.Contains(got, tt.wantMsg) {
				t.Errorf("error string %q should contain %q", got, tt.wantMsg)
			}
		})
	}
}

func TestSuggestionsAndDocs(t *testing.T) {
	err := New(ErrCodeBuildFailed, "build failed").
		WithSuggestion("check the dockerfile").
		WithSuggestions("run docker build by hand", "inspect build_stderr").
		WithDocs("https://docs.docker.com/")

	got := err.Error()

	if !strings.Contains(got, "Suggestions:") {
		t.Errorf("expected suggestions section in %q", got)
	}
	if !strings.Contains(got, "check the dockerfile") {
		t.Errorf("expected first suggestion in %q", got)
	}
	if !strings.Contains(got, "Documentation: https://docs.docker.com/") {
		t.Errorf("expected docs link in %q", got)
	}
	if len(err.Suggestions) != 3 {
		t.Errorf("expected 3 suggestions, got %d", len(err.Suggestions))
	}
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name       string
		err        *EvalError
		wantConfig bool
		wantBuild  bool
	}{
		{"cyclic dep is configuration", NewCyclicDependencyError([]string{"a", "b", "a"}), true, false},
		{"unknown type is configuration", NewUnknownTestTypeError("t1", "bogus"), true, false},
		{"build timeout is build", NewBuildTimeoutError("envgym.dockerfile", 3600), false, true},
		{"docker unavailable is neither", NewDockerNotAvailableError(), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsConfiguration(); got != tt.wantConfig {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.wantConfig)
			}
			if got := tt.err.IsBuild(); got != tt.wantBuild {
				t.Errorf("IsBuild() = %v, want %v", got, tt.wantBuild)
			}
		})
	}
}

func TestConstructorMessages(t *testing.T) {
	if got := NewUnknownDependencyError("b", "a").Error(); !strings.Contains(got, `"a"`) {
		t.Errorf("unknown dependency error should name the missing id, got %q", got)
	}
	if got := NewCyclicDependencyError([]string{"a", "b", "a"}).Error(); !strings.Contains(got, "a -> b -> a") {
		t.Errorf("cycle error should contain the cycle path, got %q", got)
	}
	if got := NewRubricNotFoundError("rubrics/manual/zstd.json").Error(); !strings.Contains(got, "rubrics/manual/zstd.json") {
		t.Errorf("not found error should contain the path, got %q", got)
	}
}
