package eval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envgauge/envgauge/internal/config"
	"github.com/envgauge/envgauge/internal/log"
	"github.com/envgauge/envgauge/internal/rubric"
)

func testEvaluator(runner CommandRunner) *Evaluator {
	return &Evaluator{
		repo:   "demo",
		cfg:    config.Default(),
		runner: runner,
		logger: log.Default(),
	}
}

func TestRunTestsDependencyPropagation(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{match: "command -v 'git'", result: ok("/usr/bin/git\n")},
		// "make build" has no canned response and fails with 127
	}}

	tests := []rubric.TestSpec{
		spec("tools", rubric.TypeCommandsExist, rubric.Params{Names: []string{"git"}}),
		spec("build", rubric.TypeRunCommand, rubric.Params{Command: "make build"}),
		spec("smoke", rubric.TypeRunCommand, rubric.Params{Command: "make smoke"}),
		spec("deep", rubric.TypeRunCommand, rubric.Params{Command: "make deep"}),
	}
	tests[2].Requires = []string{"build"}
	tests[3].Requires = []string{"smoke"}

	r := rubric.New("demo", tests)
	order, err := rubric.Resolve(r)
	require.NoError(t, err)

	e := testEvaluator(runner)
	results := e.runTests(context.Background(), r, order)
	require.Len(t, results, 4)

	byID := map[string]ExecutionResult{}
	for _, res := range results {
		byID[res.TestID] = res
	}

	assert.True(t, byID["tools"].Passed)
	assert.False(t, byID["build"].Passed)
	assert.False(t, byID["smoke"].Passed)
	assert.Equal(t, "Dependency not satisfied: build", byID["smoke"].Message)
	assert.False(t, byID["deep"].Passed)
	assert.Equal(t, "Dependency not satisfied: smoke", byID["deep"].Message)

	// skipped tests never reach the container
	for _, call := range runner.calls {
		assert.NotContains(t, call, "make smoke")
		assert.NotContains(t, call, "make deep")
	}
}

func TestSummarizeInvariants(t *testing.T) {
	results := []ExecutionResult{
		{TestID: "a", Passed: true, Score: 2, ExecutionTime: 0.5},
		{TestID: "b", Passed: false, Score: 0, ExecutionTime: 1.5},
		{TestID: "c", Passed: true, Score: 5, ExecutionTime: 1.0},
	}

	s := summarize(results, 10)

	assert.Equal(t, 3, s.TotalTests)
	assert.Equal(t, 2, s.PassedTests)
	assert.Equal(t, 1, s.FailedTests)
	assert.Equal(t, 7, s.TotalScore)
	assert.Equal(t, 10, s.MaxScore)
	assert.InDelta(t, 2.0/3.0, s.SuccessRate, 1e-9)
	assert.InDelta(t, 3.0, s.TotalExecutionTime, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := summarize(nil, 12)

	assert.Equal(t, 0, s.TotalTests)
	assert.Equal(t, 0.0, s.SuccessRate)
	assert.Equal(t, 12, s.MaxScore)
	assert.Equal(t, 0, s.TotalScore)
}

func TestEvaluateMissingDockerfile(t *testing.T) {
	e, err := New("demo", filepath.Join(t.TempDir(), "absent.dockerfile"), "rubric.json", nil, log.Default())
	require.NoError(t, err)

	report, err := e.Evaluate(context.Background())

	require.Error(t, err)
	require.NotNil(t, report)
	assert.Empty(t, report.TestResults)
	assert.NotEmpty(t, report.Errors)
}

func TestEvaluateInvalidRubric(t *testing.T) {
	dir := t.TempDir()
	dockerfile := filepath.Join(dir, "envgym.dockerfile")
	require.NoError(t, os.WriteFile(dockerfile, []byte("FROM alpine\n"), 0o644))

	rubricPath := filepath.Join(dir, "demo.json")
	require.NoError(t, os.WriteFile(rubricPath, []byte("{not json"), 0o644))

	e, err := New("demo", dockerfile, rubricPath, nil, log.Default())
	require.NoError(t, err)

	report, err := e.Evaluate(context.Background())

	require.Error(t, err)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Errors)
	assert.Empty(t, report.TestResults)
}

func TestSaveAndLoadReport(t *testing.T) {
	report := &Report{
		Repo:       "demo",
		Dockerfile: "envgym.dockerfile",
		Summary:    summarize([]ExecutionResult{{TestID: "a", Passed: true, Score: 1}}, 1),
		TestResults: []ExecutionResult{
			{TestID: "a", TestType: "run_command", Passed: true, Score: 1, Message: "ok"},
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "dir", "report.json")
	require.NoError(t, SaveReport(report, path))

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, report.Repo, loaded.Repo)
	assert.Equal(t, report.Summary, loaded.Summary)
	require.Len(t, loaded.TestResults, 1)
	assert.Equal(t, "a", loaded.TestResults[0].TestID)
}

func TestCopyTreeNested(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "inner.txt"), []byte("inner"), 0o600))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, copyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "top.txt"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(data))

	info, err := os.Stat(filepath.Join(dst, "sub", "inner.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStageContextLayout(t *testing.T) {
	dir := t.TempDir()
	repoData := filepath.Join(dir, "data", "demo")
	require.NoError(t, os.MkdirAll(repoData, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repoData, "main.go"), []byte("package main\n"), 0o644))

	dockerfile := filepath.Join(dir, "envgym.dockerfile")
	require.NoError(t, os.WriteFile(dockerfile, []byte("FROM alpine\n"), 0o644))

	e := testEvaluator(nil)
	e.dockerfile = dockerfile

	contextDir, staged, err := e.stageContext(repoData)
	require.NoError(t, err)
	defer os.RemoveAll(contextDir)

	assert.Equal(t, filepath.Join(contextDir, "envgym.dockerfile"), staged)
	assert.FileExists(t, filepath.Join(contextDir, "main.go"))
	assert.FileExists(t, filepath.Join(contextDir, "demo", "main.go"))
	assert.FileExists(t, staged)
}

func TestFileDigestStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	d1, err := FileDigest(path)
	require.NoError(t, err)
	d2, err := FileDigest(path)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Contains(t, d1, "blake3:")

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))
	d3, err := FileDigest(path)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}
