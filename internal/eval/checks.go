package eval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/envgauge/envgauge/internal/rubric"
)

// maxOutputInMessage bounds command output embedded in result messages
const maxOutputInMessage = 500

// runCheck dispatches a single test to its executor. The switch is
// exhaustive over the seven known kinds; Load already rejected anything
// else, but an unknown type still degrades to a failed result rather
// than a fault.
func runCheck(ctx context.Context, runner CommandRunner, spec rubric.TestSpec, requireExitZero bool) ExecutionResult {
	switch spec.Type {
	case rubric.TypeCommandsExist:
		return checkCommandsExist(ctx, runner, spec)
	case rubric.TypeEnvvarSet:
		return checkEnvvarSet(ctx, runner, spec)
	case rubric.TypeDirsExist:
		return checkPathsExist(ctx, runner, spec, "-d", "directories")
	case rubric.TypeFilesExist:
		return checkPathsExist(ctx, runner, spec, "-f", "files")
	case rubric.TypeFileContains:
		return checkFileContains(ctx, runner, spec)
	case rubric.TypeRunCommand:
		return checkRunCommand(ctx, runner, spec)
	case rubric.TypeOutputContains:
		return checkOutputContains(ctx, runner, spec, requireExitZero)
	default:
		return ExecutionResult{
			TestID:   spec.ID,
			TestType: string(spec.Type),
			Message:  fmt.Sprintf("Unknown test type: %s", spec.Type),
		}
	}
}

// result builds an ExecutionResult, awarding the full spec score on pass
// and zero otherwise
func result(spec rubric.TestSpec, passed bool, message string, elapsed time.Duration) ExecutionResult {
	score := 0
	if passed {
		score = spec.Score
	}
	return ExecutionResult{
		TestID:        spec.ID,
		TestType:      string(spec.Type),
		Passed:        passed,
		Score:         score,
		Message:       message,
		ExecutionTime: elapsed.Seconds(),
	}
}

// shellQuote single-quotes a string for sh -c interpolation
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// truncate caps command output quoted in messages
func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxOutputInMessage {
		return s
	}
	return s[:maxOutputInMessage] + "..."
}

// timeoutFor converts a spec's timeout seconds into a duration
func timeoutFor(spec rubric.TestSpec) time.Duration {
	return time.Duration(spec.Timeout) * time.Second
}

// checkCommandsExist passes iff every name resolves via command -v
func checkCommandsExist(ctx context.Context, runner CommandRunner, spec rubric.TestSpec) ExecutionResult {
	start := time.Now()
	timeout := timeoutFor(spec)

	var found, missing []string
	for _, name := range spec.Params.Names {
		res := runner.Run(ctx, fmt.Sprintf("command -v %s", shellQuote(name)), timeout)
		if res.TimedOut {
			return result(spec, false,
				fmt.Sprintf("Command lookup for %q timed out after %ds", name, spec.Timeout),
				time.Since(start))
		}
		if res.Success() && strings.TrimSpace(res.Stdout) != "" {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}

	elapsed := time.Since(start)
	switch {
	case len(missing) == 0:
		return result(spec, true, fmt.Sprintf("All commands found: %s", strings.Join(found, ", ")), elapsed)
	case len(found) > 0:
		return result(spec, false,
			fmt.Sprintf("Found %d/%d commands. Found: %s. Missing: %s",
				len(found), len(spec.Params.Names), strings.Join(found, ", "), strings.Join(missing, ", ")),
			elapsed)
	default:
		return result(spec, false, fmt.Sprintf("No commands found. Missing: %s", strings.Join(missing, ", ")), elapsed)
	}
}

// checkEnvvarSet passes iff the variable expands to a non-empty value
// in the container's shell
func checkEnvvarSet(ctx context.Context, runner CommandRunner, spec rubric.TestSpec) ExecutionResult {
	start := time.Now()

	// Rubric loading rejects names that are not plain shell identifiers,
	// so the expansion below cannot be escaped.
	name := spec.Params.Name

	res := runner.Run(ctx, fmt.Sprintf(`printf %%s "$%s"`, name), timeoutFor(spec))
	elapsed := time.Since(start)

	if res.TimedOut {
		return result(spec, false,
			fmt.Sprintf("Environment check for '%s' timed out after %ds", name, spec.Timeout), elapsed)
	}

	value := res.Stdout
	if res.Success() && value != "" {
		return result(spec, true,
			fmt.Sprintf("Environment variable '%s' is set to '%s'", name, truncate(value)), elapsed)
	}
	return result(spec, false, fmt.Sprintf("Environment variable '%s' is not set", name), elapsed)
}

// checkPathsExist passes iff every path exists as the expected type
// (testFlag "-f" for files, "-d" for directories)
func checkPathsExist(ctx context.Context, runner CommandRunner, spec rubric.TestSpec, testFlag, noun string) ExecutionResult {
	start := time.Now()
	timeout := timeoutFor(spec)

	var found, missing []string
	for _, path := range spec.Params.Paths {
		res := runner.Run(ctx, fmt.Sprintf("test %s %s", testFlag, shellQuote(path)), timeout)
		if res.TimedOut {
			return result(spec, false,
				fmt.Sprintf("Existence check for %q timed out after %ds", path, spec.Timeout),
				time.Since(start))
		}
		if res.Success() {
			found = append(found, path)
		} else {
			missing = append(missing, path)
		}
	}

	elapsed := time.Since(start)
	switch {
	case len(missing) == 0:
		return result(spec, true, fmt.Sprintf("All %s found: %s", noun, strings.Join(found, ", ")), elapsed)
	case len(found) > 0:
		return result(spec, false,
			fmt.Sprintf("Found %d/%d %s. Found: %s. Missing: %s",
				len(found), len(spec.Params.Paths), noun, strings.Join(found, ", "), strings.Join(missing, ", ")),
			elapsed)
	default:
		return result(spec, false, fmt.Sprintf("No %s found. Missing: %s", noun, strings.Join(missing, ", ")), elapsed)
	}
}

// checkFileContains passes iff the file exists and its content contains
// every required substring (case-sensitive)
func checkFileContains(ctx context.Context, runner CommandRunner, spec rubric.TestSpec) ExecutionResult {
	start := time.Now()
	timeout := timeoutFor(spec)
	path := spec.Params.Path

	res := runner.Run(ctx, fmt.Sprintf("test -f %s", shellQuote(path)), timeout)
	if res.TimedOut {
		return result(spec, false,
			fmt.Sprintf("Existence check for %q timed out after %ds", path, spec.Timeout), time.Since(start))
	}
	if !res.Success() {
		return result(spec, false, fmt.Sprintf("File '%s' does not exist", path), time.Since(start))
	}

	res = runner.Run(ctx, fmt.Sprintf("cat %s", shellQuote(path)), timeout)
	elapsed := time.Since(start)
	if res.TimedOut {
		return result(spec, false,
			fmt.Sprintf("Reading %q timed out after %ds", path, spec.Timeout), elapsed)
	}
	if !res.Success() {
		return result(spec, false,
			fmt.Sprintf("Could not read file '%s': %s", path, truncate(res.Stderr)), elapsed)
	}

	var matched, absent []string
	for _, want := range spec.Params.Contains {
		if strings.Contains(res.Stdout, want) {
			matched = append(matched, want)
		} else {
			absent = append(absent, want)
		}
	}

	if len(absent) == 0 {
		return result(spec, true, fmt.Sprintf("File contains: %s", strings.Join(matched, ", ")), elapsed)
	}
	return result(spec, false,
		fmt.Sprintf("File '%s' does not contain: %s", path, strings.Join(absent, ", ")), elapsed)
}

// checkRunCommand passes iff the command exits 0 within the timeout
func checkRunCommand(ctx context.Context, runner CommandRunner, spec rubric.TestSpec) ExecutionResult {
	start := time.Now()

	res := runner.Run(ctx, spec.Params.Command, timeoutFor(spec))
	elapsed := time.Since(start)

	if res.TimedOut {
		return result(spec, false,
			fmt.Sprintf("Command timed out after %ds", spec.Timeout), elapsed)
	}
	if res.Err != nil {
		return result(spec, false, fmt.Sprintf("Command could not be executed: %v", res.Err), elapsed)
	}
	if res.ExitCode == 0 {
		return result(spec, true, "Command executed successfully", elapsed)
	}
	return result(spec, false,
		fmt.Sprintf("Command failed with exit code %d. Output: %s", res.ExitCode, truncate(res.CombinedOutput())),
		elapsed)
}

// checkOutputContains runs the command and matches its combined output.
// With requireExitZero (the default policy) a nonzero exit fails the
// test even when the output matches.
func checkOutputContains(ctx context.Context, runner CommandRunner, spec rubric.TestSpec, requireExitZero bool) ExecutionResult {
	start := time.Now()

	res := runner.Run(ctx, spec.Params.Command, timeoutFor(spec))
	elapsed := time.Since(start)

	if res.TimedOut {
		return result(spec, false,
			fmt.Sprintf("Command timed out after %ds", spec.Timeout), elapsed)
	}
	if res.Err != nil {
		return result(spec, false, fmt.Sprintf("Command could not be executed: %v", res.Err), elapsed)
	}

	output := res.CombinedOutput()
	var matched, absent []string
	for _, want := range spec.Params.Contains {
		if strings.Contains(output, want) {
			matched = append(matched, want)
		} else {
			absent = append(absent, want)
		}
	}

	if requireExitZero && res.ExitCode != 0 {
		return result(spec, false,
			fmt.Sprintf("Command failed with exit code %d. Output: %s", res.ExitCode, truncate(output)),
			elapsed)
	}
	if len(absent) > 0 {
		return result(spec, false,
			fmt.Sprintf("Output does not contain: %s. Command output: %s",
				strings.Join(absent, ", "), truncate(output)),
			elapsed)
	}
	return result(spec, true, fmt.Sprintf("Output contains: %s", strings.Join(matched, ", ")), elapsed)
}
