package batch

import (
	"context"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/envgauge/envgauge/internal/config"
	"github.com/envgauge/envgauge/internal/container"
	evalerrors "github.com/envgauge/envgauge/internal/errors"
	"github.com/envgauge/envgauge/internal/eval"
	"github.com/envgauge/envgauge/internal/log"
)

// Options controls one batch run over a repository's dockerfiles.
type Options struct {
	// SkipExisting leaves targets alone when their report already exists
	SkipExisting bool

	// SummaryOnly rebuilds the repo summary from existing reports
	// without running any evaluation
	SummaryOnly bool

	// Concurrency bounds parallel evaluations (default 1). Each
	// evaluation owns its own image and container, so higher values
	// trade docker daemon load for wall time.
	Concurrency int
}

// Outcome records what happened to a single target during a batch run.
type Outcome struct {
	Target     Target
	ReportPath string
	Report     *eval.Report
	Skipped    bool
	Err        error
}

// Runner evaluates every dockerfile found for a repository and writes
// the mirrored per-model reports plus the cross-model repo summary.
type Runner struct {
	cfg    *config.Config
	logger *log.Logger
}

// NewRunner creates a batch runner. A nil cfg or logger falls back to
// the defaults.
func NewRunner(cfg *config.Config, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run discovers the repo's dockerfiles, evaluates each one, and writes
// the repo summary. Per-target failures are recorded in the outcomes and
// do not stop the batch; Run only returns an error when discovery finds
// nothing or the summary cannot be written.
func (r *Runner) Run(ctx context.Context, repo string, opts Options) ([]Outcome, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	if opts.SummaryOnly {
		return nil, r.WriteSummary(repo)
	}

	targets, err := FindDockerfiles(repo, r.cfg.Paths.BaselineDir, r.cfg.Paths.DockerfileBasename)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, evalerrors.New(evalerrors.ErrCodeFileNotFound,
			"no dockerfiles found for repository "+repo).
			WithSuggestion("Check the repo name and the baseline directory layout")
	}

	r.logger.Info("starting batch evaluation", "repo", repo, "dockerfiles", len(targets))

	// Sweep containers orphaned by earlier interrupted runs
	container.CleanupRepoContainers(repo)

	outcomes := make([]Outcome, len(targets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			outcome := r.evaluateTarget(gctx, repo, target, opts)
			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()
			// target failures are outcomes, not batch errors; only a
			// cancelled context stops the group
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	if err := r.WriteSummary(repo); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// evaluateTarget runs one dockerfile through the evaluator and persists
// its report. The report write is attempted even when evaluation failed,
// so a build or rubric problem still leaves evidence on disk.
func (r *Runner) evaluateTarget(ctx context.Context, repo string, target Target, opts Options) Outcome {
	outcome := Outcome{
		Target:     target,
		ReportPath: ReportPath(target.RelPath, r.cfg.Paths.ReportsByModelDir),
	}

	if opts.SkipExisting {
		if _, err := os.Stat(outcome.ReportPath); err == nil {
			r.logger.Info("skipping existing report", "report", outcome.ReportPath)
			outcome.Skipped = true
			return outcome
		}
	}

	r.logger.Info("evaluating dockerfile",
		"dockerfile", target.DockerfilePath, "model", ExtractModelID(target.RelPath))

	ev, err := eval.New(repo, target.DockerfilePath, "", r.cfg, r.logger)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	report, evalErr := ev.Evaluate(ctx)
	outcome.Report = report
	outcome.Err = evalErr

	if report != nil {
		if saveErr := eval.SaveReport(report, outcome.ReportPath); saveErr != nil {
			r.logger.WithError(saveErr).Warn("could not persist report", "report", outcome.ReportPath)
			if outcome.Err == nil {
				outcome.Err = saveErr
			}
		}
	}
	return outcome
}
