package eval

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/envgauge/envgauge/internal/config"
	"github.com/envgauge/envgauge/internal/container"
	evalerrors "github.com/envgauge/envgauge/internal/errors"
	"github.com/envgauge/envgauge/internal/log"
	"github.com/envgauge/envgauge/internal/rubric"
)

// Evaluator runs one dockerfile through one rubric and produces a Report.
// An Evaluator is single-use: create one per evaluation.
type Evaluator struct {
	repo       string
	dockerfile string
	rubricPath string

	cfg    *config.Config
	engine *container.Engine
	runner CommandRunner
	logger *log.Logger

	state State
}

// New creates an Evaluator for a repo's dockerfile and rubric. A nil cfg
// or logger falls back to the defaults.
func New(repo, dockerfile, rubricPath string, cfg *config.Config, logger *log.Logger) (*Evaluator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	if rubricPath == "" {
		rubricPath = rubric.DefaultPath(cfg.Paths.RubricDir, repo)
	}

	engine, err := container.NewEngine(repo, logger)
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		repo:       repo,
		dockerfile: dockerfile,
		rubricPath: rubricPath,
		cfg:        cfg,
		engine:     engine,
		runner:     engine,
		logger:     logger.With("repo", repo),
		state:      StateNotStarted,
	}, nil
}

// State reports the evaluation lifecycle phase
func (e *Evaluator) State() State {
	return e.state
}

// Evaluate runs the full pipeline: load the rubric, stage and build the
// image, run every test in dependency order, and aggregate the report.
//
// A report is returned on every path, including failures, so callers can
// persist whatever was learned before the error. The error classifies the
// failure: rubric problems are configuration errors, build problems are
// build errors, and a completed run with failing tests returns a nil
// error with the failures recorded in the report.
func (e *Evaluator) Evaluate(ctx context.Context) (*Report, error) {
	report := &Report{
		Repo:        e.repo,
		Dockerfile:  e.dockerfile,
		Rubric:      e.rubricPath,
		TestResults: []ExecutionResult{},
	}

	if _, err := os.Stat(e.dockerfile); err != nil {
		notFound := evalerrors.NewFileNotFoundError(e.dockerfile).
			WithSuggestion("Check the dockerfile path")
		report.Errors = append(report.Errors, notFound.Error())
		return report, notFound
	}

	r, err := rubric.Load(e.rubricPath, e.cfg.Tests.DefaultTimeoutSeconds)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, err
	}
	report.Summary.MaxScore = r.MaxScore()

	order, err := rubric.Resolve(r)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report, err
	}

	// Digests are informational only; a read failure is not fatal here
	// because the files were already opened above.
	if d, derr := FileDigest(e.dockerfile); derr == nil {
		report.DockerfileDigest = d
	}
	if d, derr := FileDigest(e.rubricPath); derr == nil {
		report.RubricDigest = d
	}

	defer e.engine.Cleanup()

	buildLog, err := e.build(ctx)
	report.BuildLog = buildLog
	if err != nil {
		e.state = StateBuildFailed
		report.Summary = summarize(nil, r.MaxScore())
		report.Errors = append(report.Errors, err.Error())
		return report, err
	}
	e.state = StateBuildOK

	e.state = StateRunningTests
	report.TestResults = e.runTests(ctx, r, order)
	report.Summary = summarize(report.TestResults, r.MaxScore())
	e.state = StateComplete

	e.logger.Info("evaluation complete",
		"passed", report.Summary.PassedTests,
		"failed", report.Summary.FailedTests,
		"score", fmt.Sprintf("%d/%d", report.Summary.TotalScore, report.Summary.MaxScore))

	return report, nil
}

// build stages the docker context, runs the build, and tears the staging
// directory down. A build failure or timeout is returned as an error with
// the populated BuildLog alongside it.
func (e *Evaluator) build(ctx context.Context) (*container.BuildLog, error) {
	e.state = StateBuilding

	repoData := filepath.Join(e.cfg.Build.DataDir, e.repo)
	info, statErr := os.Stat(repoData)
	if statErr != nil || !info.IsDir() {
		buildErr := evalerrors.New(evalerrors.ErrCodeBuildContextMissing,
			fmt.Sprintf("source code directory not found at %s", repoData)).
			WithSuggestion(fmt.Sprintf("Check that the repo name %q matches a directory under %s", e.repo, e.cfg.Build.DataDir))
		return &container.BuildLog{
			DockerfilePath: e.dockerfile,
			RepoDataExists: false,
			ErrorMessage:   buildErr.Error(),
		}, buildErr
	}

	contextDir, dockerfile, err := e.stageContext(repoData)
	if err != nil {
		return &container.BuildLog{
			DockerfilePath: e.dockerfile,
			RepoDataExists: true,
			ErrorMessage:   err.Error(),
		}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(contextDir); rmErr != nil {
			e.logger.Warn("could not remove staging directory", "dir", contextDir, "error", rmErr)
		}
	}()

	timeout := time.Duration(e.cfg.Build.TimeoutSeconds) * time.Second
	buildLog := e.engine.BuildImage(ctx, dockerfile, contextDir, timeout)
	if !buildLog.BuildSuccess {
		if buildLog.BuildTimeout {
			return buildLog, evalerrors.NewBuildTimeoutError(e.dockerfile, timeout.Seconds())
		}
		return buildLog, evalerrors.NewBuildFailedError(e.dockerfile, fmt.Errorf("%s", buildLog.ErrorMessage))
	}
	return buildLog, nil
}

// stageContext assembles the build context in a temp directory: the repo
// source at the root, a nested <repo>/ copy for dockerfiles that address
// the source either way, and the dockerfile itself at the root.
func (e *Evaluator) stageContext(repoData string) (contextDir, dockerfile string, err error) {
	contextDir, err = os.MkdirTemp("", "envgauge_"+filepath.Base(e.repo)+"_")
	if err != nil {
		return "", "", evalerrors.Wrap(evalerrors.ErrCodeDirectoryFailed,
			"failed to create build staging directory", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(contextDir)
		}
	}()

	if err = copyTree(repoData, contextDir); err != nil {
		return "", "", err
	}
	if err = copyTree(repoData, filepath.Join(contextDir, e.repo)); err != nil {
		return "", "", err
	}

	dockerfile = filepath.Join(contextDir, filepath.Base(e.dockerfile))
	if err = copyFile(e.dockerfile, dockerfile); err != nil {
		return "", "", err
	}

	e.logger.Debug("staged build context", "dir", contextDir)
	return contextDir, dockerfile, nil
}

// runTests executes each test in dependency order. A test whose direct
// requirement did not pass is recorded as failed without ever touching
// the container; since order is topological, one failure fails the whole
// downstream chain.
func (e *Evaluator) runTests(ctx context.Context, r *rubric.Rubric, order []int) []ExecutionResult {
	results := make([]ExecutionResult, 0, len(order))
	passed := make(map[string]bool, len(order))

	for _, idx := range order {
		spec := r.Tests[idx]

		if dep, ok := unmetRequirement(spec, passed); ok {
			e.logger.Debug("skipping test", "test", spec.ID, "unmet", dep)
			results = append(results, ExecutionResult{
				TestID:   spec.ID,
				TestType: string(spec.Type),
				Message:  fmt.Sprintf("Dependency not satisfied: %s", dep),
			})
			passed[spec.ID] = false
			continue
		}

		e.logger.Debug("running test", "test", spec.ID, "type", spec.Type)
		res := runCheck(ctx, e.runner, spec, e.cfg.Tests.RequireExitZero)
		results = append(results, res)
		passed[spec.ID] = res.Passed
	}

	return results
}

// unmetRequirement returns the first required test that did not pass
func unmetRequirement(spec rubric.TestSpec, passed map[string]bool) (string, bool) {
	for _, dep := range spec.Requires {
		if !passed[dep] {
			return dep, true
		}
	}
	return "", false
}

// copyTree recursively copies a directory, preserving file mode bits.
// Symlinked files are copied through as regular files.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

// copyFile copies a single file, carrying over the source's mode bits
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileReadFailed,
			fmt.Sprintf("failed to open %s", src), err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileReadFailed,
			fmt.Sprintf("failed to stat %s", src), err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeDirectoryFailed,
			fmt.Sprintf("failed to create %s", filepath.Dir(dst)), err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to create %s", dst), err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return evalerrors.Wrap(evalerrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to copy %s", src), err)
	}
	return out.Close()
}
