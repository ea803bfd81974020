package eval

import (
	"context"
	"time"

	"github.com/envgauge/envgauge/internal/container"
)

// CommandRunner executes a shell command inside the evaluation container.
// container.Engine is the real implementation; tests substitute fakes.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) *container.Result
}

// ExecutionResult is the immutable outcome of a single rubric test
type ExecutionResult struct {
	TestID        string  `json:"test_id"`
	TestType      string  `json:"test_type"`
	Passed        bool    `json:"passed"`
	Score         int     `json:"score"`
	Message       string  `json:"message"`
	ExecutionTime float64 `json:"execution_time"` // seconds
}

// Summary aggregates counts, scores, and timing across all test results
type Summary struct {
	TotalTests         int     `json:"total_tests"`
	PassedTests        int     `json:"passed_tests"`
	FailedTests        int     `json:"failed_tests"`
	TotalScore         int     `json:"total_score"`
	MaxScore           int     `json:"max_score"`
	SuccessRate        float64 `json:"success_rate"`
	TotalExecutionTime float64 `json:"total_execution_time"`
}

// Report is the complete record of one (dockerfile, rubric) evaluation.
// It is built incrementally during a run and serialized once at the end.
type Report struct {
	Repo             string              `json:"repo"`
	Dockerfile       string              `json:"dockerfile"`
	Rubric           string              `json:"rubric"`
	DockerfileDigest string              `json:"dockerfile_digest,omitempty"`
	RubricDigest     string              `json:"rubric_digest,omitempty"`
	BuildLog         *container.BuildLog `json:"build_log,omitempty"`
	Summary          Summary             `json:"summary"`
	TestResults      []ExecutionResult   `json:"test_results"`
	Errors           []string            `json:"errors,omitempty"`
}

// State tracks the lifecycle of a single evaluation run
type State int

const (
	StateNotStarted State = iota
	StateBuilding
	StateBuildFailed // terminal
	StateBuildOK
	StateRunningTests
	StateComplete // terminal
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateBuilding:
		return "BUILDING"
	case StateBuildFailed:
		return "BUILD_FAILED"
	case StateBuildOK:
		return "BUILD_OK"
	case StateRunningTests:
		return "RUNNING_TESTS"
	case StateComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// summarize folds per-test results into the report summary.
// Awarded scores are already zeroed for failed tests, so total_score
// is exactly the sum over passing tests.
func summarize(results []ExecutionResult, maxScore int) Summary {
	s := Summary{
		TotalTests: len(results),
		MaxScore:   maxScore,
	}

	for _, r := range results {
		if r.Passed {
			s.PassedTests++
			s.TotalScore += r.Score
		}
		s.TotalExecutionTime += r.ExecutionTime
	}
	s.FailedTests = s.TotalTests - s.PassedTests

	if s.TotalTests > 0 {
		s.SuccessRate = float64(s.PassedTests) / float64(s.TotalTests)
	}

	return s
}
