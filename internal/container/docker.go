package container

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/uuid"

	"github.com/envgauge/envgauge/internal/errors"
	"github.com/envgauge/envgauge/internal/log"
)

// Engine runs docker builds and in-container commands for one evaluation.
// Each evaluation owns its Engine exclusively; image and container names
// carry a unique suffix so concurrent evaluations never collide.
type Engine struct {
	Repo          string
	Image         string
	ContainerName string

	logger *log.Logger
}

// NewEngine creates an Engine with unique image and container names for a repo
func NewEngine(repo string, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	// The tag carries the same unique suffix as the container name so
	// concurrent evaluations of one repo never build over each other.
	suffix := strings.Split(uuid.New().String(), "-")[0]
	image := fmt.Sprintf("eval_%s:%s", sanitize(repo), suffix)
	if _, err := name.NewTag(image); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExecInvalidImageRef,
			fmt.Sprintf("repo %q does not form a valid image tag", repo), err).
			WithSuggestion("Repo names may only contain letters, digits, '_', '-' and '.'")
	}

	return &Engine{
		Repo:          repo,
		Image:         image,
		ContainerName: fmt.Sprintf("eval_%s_%s", sanitize(repo), suffix),
		logger:        logger,
	}, nil
}

// sanitize maps a repo name onto docker's allowed reference charset
func sanitize(repo string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(repo) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ValidateAvailable checks if Docker is available on the system
func ValidateAvailable(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", "version")
	if err := cmd.Run(); err != nil {
		return errors.NewDockerNotAvailableError()
	}
	return nil
}

// BuildImage builds the evaluation image from a dockerfile within timeout.
// The returned BuildLog is always populated; inspect BuildSuccess rather
// than the error for the build outcome. An error is only returned when
// docker itself could not be invoked.
func (e *Engine) BuildImage(ctx context.Context, dockerfile, contextDir string, timeout time.Duration) *BuildLog {
	args := []string{"build", "-t", e.Image, "-f", dockerfile, contextDir}
	buildLog := &BuildLog{
		Command:        "docker " + strings.Join(args, " "),
		DockerfilePath: dockerfile,
		BuildContext:   contextDir,
		RepoDataExists: true,
	}

	buildCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Info("building docker image", "image", e.Image, "dockerfile", dockerfile)

	start := time.Now()
	cmd := exec.CommandContext(buildCtx, "docker", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	buildLog.BuildSeconds = time.Since(start).Seconds()
	buildLog.BuildStdout = stdout.String()
	buildLog.BuildStderr = stderr.String()

	switch {
	case buildCtx.Err() == context.DeadlineExceeded:
		buildLog.BuildTimeout = true
		buildLog.BuildReturncode = -1
		buildLog.ErrorMessage = fmt.Sprintf("docker build timed out after %s", timeout)
	case err != nil:
		if exitErr, ok := err.(*exec.ExitError); ok {
			buildLog.BuildReturncode = exitErr.ExitCode()
		} else {
			buildLog.BuildReturncode = -1
		}
		buildLog.ErrorMessage = err.Error()
	default:
		buildLog.BuildSuccess = true
	}

	if buildLog.BuildSuccess {
		e.logger.Info("docker image built", "image", e.Image, "seconds", buildLog.BuildSeconds)
	} else {
		e.logger.Warn("docker build failed", "image", e.Image, "error", buildLog.ErrorMessage)
	}

	return buildLog
}

// Run executes a shell command inside a fresh container from the built
// image, enforcing the timeout by killing the docker subprocess. A timeout
// is reported in the Result, never as a Go error: a hung check must not
// abort the rubric.
func (e *Engine) Run(ctx context.Context, command string, timeout time.Duration) *Result {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := []string{
		"run", "--rm",
		"--name", fmt.Sprintf("%s_run", e.ContainerName),
		e.Image,
		"sh", "-c", command,
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, "docker", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.TimedOut = true
		result.ExitCode = -1
		result.Stderr += fmt.Sprintf("Command timed out (%.0fs)", timeout.Seconds())
	case err != nil:
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Err = err
		}
	}

	return result
}

// Cleanup removes the evaluation container, any leftovers matching the
// repo's name pattern, and the built image. It runs best-effort on every
// exit path, including interrupts, so it deliberately ignores a
// cancelled parent context.
func (e *Engine) Cleanup() {
	run := func(args ...string) string {
		cmd := exec.Command("docker", args...)
		var out bytes.Buffer
		cmd.Stdout = &out
		_ = cmd.Run()
		return out.String()
	}

	run("stop", e.ContainerName)
	run("rm", e.ContainerName)

	// Sweep leftover containers from this repo, including earlier runs
	// that died without cleanup
	psOut := run("ps", "-a", "--filter", fmt.Sprintf("name=eval_%s_", sanitize(e.Repo)), "--format", "{{.Names}}")
	for _, container := range strings.Split(strings.TrimSpace(psOut), "\n") {
		container = strings.TrimSpace(container)
		if container == "" {
			continue
		}
		run("stop", container)
		run("rm", container)
		e.logger.Debug("cleaned up leftover container", "container", container)
	}

	run("rmi", e.Image)
	e.logger.Info("cleaned up docker resources", "repo", e.Repo)
}

// CleanupRepoContainers removes leftover eval containers for a repo
// before a new batch run starts
func CleanupRepoContainers(repo string) {
	cmd := exec.Command("docker", "ps", "-a", "--filter",
		fmt.Sprintf("name=eval_%s_", sanitize(repo)), "--format", "{{.Names}}")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return
	}
	for _, container := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		container = strings.TrimSpace(container)
		if container == "" {
			continue
		}
		_ = exec.Command("docker", "stop", container).Run()
		_ = exec.Command("docker", "rm", container).Run()
	}
}
