package container

import (
	"strings"
	"testing"
	"time"
)

func TestNewEngine(t *testing.T) {
	e, err := NewEngine("facebook_zstd", nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if !strings.HasPrefix(e.Image, "eval_facebook_zstd:") {
		t.Errorf("image = %q, want eval_facebook_zstd:<suffix>", e.Image)
	}
	if !strings.HasPrefix(e.ContainerName, "eval_facebook_zstd_") {
		t.Errorf("container name = %q, want eval_facebook_zstd_ prefix", e.ContainerName)
	}
	if e.ContainerName == "eval_facebook_zstd_" {
		t.Error("container name should carry a unique suffix")
	}
}

func TestNewEngineUniqueNames(t *testing.T) {
	a, err := NewEngine("repo", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine("repo", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.ContainerName == b.ContainerName {
		t.Errorf("two engines share container name %q", a.ContainerName)
	}
	if a.Image == b.Image {
		t.Errorf("two engines share image tag %q", a.Image)
	}
}

func TestNewEngineSanitizesRepoName(t *testing.T) {
	e, err := NewEngine("Facebook/Zstd", nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if !strings.HasPrefix(e.Image, "eval_facebook_zstd:") {
		t.Errorf("image = %q, want sanitized lowercase repo in tag", e.Image)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"facebook_zstd", "facebook_zstd"},
		{"Repo Name", "repo_name"},
		{"a/b:c", "a_b_c"},
		{"simple-repo.v2", "simple-repo.v2"},
	}

	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResultSuccess(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"exit zero", Result{ExitCode: 0}, true},
		{"nonzero exit", Result{ExitCode: 1}, false},
		{"timed out", Result{ExitCode: 0, TimedOut: true}, false},
		{"runner error", Result{ExitCode: 0, Err: errDummy}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}

var errDummy = &timeoutError{}

type timeoutError struct{}

func (e *timeoutError) Error() string { return "dummy" }

func TestCombinedOutput(t *testing.T) {
	r := Result{Stdout: "out", Stderr: "err", Duration: time.Second}
	if got := r.CombinedOutput(); got != "outerr" {
		t.Errorf("CombinedOutput() = %q, want outerr", got)
	}
}
