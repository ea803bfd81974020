package batch

import (
	"io/fs"
	"path/filepath"
	"strings"

	evalerrors "github.com/envgauge/envgauge/internal/errors"
)

// Target is one dockerfile found under the baseline tree. RelPath is the
// path from the baseline root, e.g. "claude/claude35haiku/facebook_zstd/envgym.dockerfile";
// the directory layout encodes the model that produced the dockerfile.
type Target struct {
	DockerfilePath string
	RelPath        string
}

// FindDockerfiles walks the baseline tree and returns every dockerfile
// with the given basename whose path mentions the repo. Results come
// back in walk order, which is deterministic (lexical).
func FindDockerfiles(repo, baselineDir, basename string) ([]Target, error) {
	var targets []Target

	err := filepath.WalkDir(baselineDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != basename {
			return nil
		}
		if !strings.Contains(path, repo) {
			return nil
		}
		rel, relErr := filepath.Rel(baselineDir, path)
		if relErr != nil {
			return relErr
		}
		targets = append(targets, Target{DockerfilePath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, evalerrors.Wrap(evalerrors.ErrCodeFileReadFailed,
			"failed to scan baseline directory "+baselineDir, err).
			WithSuggestion("Check that the baseline directory exists and is readable")
	}

	return targets, nil
}

// ReportPath maps a dockerfile's relative path onto the mirrored report
// location: the dockerfile basename is replaced with the report filename.
func ReportPath(relDockerfile, reportsDir string) string {
	dir := filepath.Dir(relDockerfile)
	if dir == "." {
		return filepath.Join(reportsDir, ReportFilename)
	}
	return filepath.Join(reportsDir, dir, ReportFilename)
}

// ReportFilename is the per-evaluation report name inside the mirrored tree
const ReportFilename = "evaluation_report.json"

// ExtractModelID derives the model identifier from a dockerfile's
// relative path. The first two path segments name provider and model;
// dockerfiles under "ours" carry an extra provider level and collapse
// to "ours-<provider>/<model>".
func ExtractModelID(relPath string) string {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) < 3 {
		return "unknown"
	}
	if parts[0] == "ours" && len(parts) >= 4 {
		return parts[0] + "-" + parts[1] + "/" + parts[2]
	}
	return parts[0] + "/" + parts[1]
}
