package container

import "time"

// Result represents the outcome of running a command inside the container
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
	Err      error
}

// Success reports whether the command completed with exit status 0
func (r *Result) Success() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// CombinedOutput returns stdout followed by stderr
func (r *Result) CombinedOutput() string {
	return r.Stdout + r.Stderr
}

// BuildLog records everything about a docker build attempt.
// Field names match the evaluation report wire format.
type BuildLog struct {
	Command         string  `json:"command"`
	DockerfilePath  string  `json:"dockerfile_path"`
	BuildContext    string  `json:"build_context"`
	RepoDataExists  bool    `json:"repo_data_exists"`
	BuildSuccess    bool    `json:"build_success"`
	BuildStdout     string  `json:"build_stdout"`
	BuildStderr     string  `json:"build_stderr"`
	BuildReturncode int     `json:"build_returncode"`
	BuildTimeout    bool    `json:"build_timeout"`
	BuildSeconds    float64 `json:"build_seconds"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}
