package rubric

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/envgauge/envgauge/internal/errors"
)

// DefaultTimeoutSeconds applies when a test omits its timeout
const DefaultTimeoutSeconds = 30

// DefaultScore applies when a test omits its score
const DefaultScore = 1

// Load reads a rubric JSON file, applies defaults, and validates it.
// All id/requires references are resolved here so dependency edges
// can be traversed as dense indices afterwards. Tests that omit their
// timeout get defaultTimeout seconds; pass 0 for the built-in default.
func Load(path string, defaultTimeout int) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewRubricNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read rubric file: %s", path), err)
	}

	var r Rubric
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRubricUnmarshal, fmt.Sprintf("invalid JSON in rubric file: %s", path), err).
			WithSuggestion("Validate the file with a JSON linter")
	}

	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeoutSeconds
	}
	applyDefaults(&r, defaultTimeout)

	if err := validate(&r); err != nil {
		return nil, err
	}

	r.index = make(map[string]int, len(r.Tests))
	for i, t := range r.Tests {
		r.index[t.ID] = i
	}

	return &r, nil
}

// applyDefaults fills omitted ids, timeouts, and scores.
// Omitted ids become positional: <type>_<position>.
func applyDefaults(r *Rubric, defaultTimeout int) {
	for i := range r.Tests {
		t := &r.Tests[i]
		if t.ID == "" {
			t.ID = fmt.Sprintf("%s_%d", t.Type, i+1)
		}
		if t.Timeout <= 0 {
			t.Timeout = defaultTimeout
		}
		if t.Score <= 0 {
			t.Score = DefaultScore
		}
	}
}

func validate(r *Rubric) error {
	seen := make(map[string]bool, len(r.Tests))

	for i, t := range r.Tests {
		if t.Type == "" {
			return errors.NewRubricInvalidError(fmt.Sprintf("test at index %d is missing its type", i))
		}
		if !t.Type.Valid() {
			return errors.NewUnknownTestTypeError(t.ID, string(t.Type))
		}
		if t.Params == nil {
			return errors.NewRubricInvalidError(fmt.Sprintf("test %q is missing params", t.ID))
		}
		if !t.Category.Valid() {
			return errors.NewRubricInvalidError(fmt.Sprintf("test %q has unknown category %q", t.ID, t.Category))
		}
		if err := validateParams(&r.Tests[i]); err != nil {
			return err
		}

		if seen[t.ID] {
			return errors.New(errors.ErrCodeRubricDuplicateID, fmt.Sprintf("duplicate test id %q at index %d", t.ID, i)).
				WithSuggestion("Ids referenced by requires must be unique within a rubric")
		}
		seen[t.ID] = true
	}

	// All requires references must name a defined test
	for _, t := range r.Tests {
		for _, dep := range t.Requires {
			if !seen[dep] {
				return errors.NewUnknownDependencyError(t.ID, dep)
			}
		}
	}

	return nil
}

var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateParams checks the kind-specific params each type needs
func validateParams(t *TestSpec) error {
	missing := func(field string) error {
		return errors.NewRubricInvalidError(fmt.Sprintf("test %q (%s) is missing params.%s", t.ID, t.Type, field))
	}

	switch t.Type {
	case TypeCommandsExist:
		if len(t.Params.Names) == 0 {
			return missing("names")
		}
	case TypeEnvvarSet:
		if t.Params.Name == "" {
			return missing("name")
		}
		// The name is interpolated into a shell expansion later, so it
		// must be a plain identifier.
		if !envNameRe.MatchString(t.Params.Name) {
			return errors.NewRubricInvalidError(
				fmt.Sprintf("test %q has invalid environment variable name %q", t.ID, t.Params.Name))
		}
	case TypeDirsExist, TypeFilesExist:
		if len(t.Params.Paths) == 0 {
			return missing("paths")
		}
	case TypeFileContains:
		if t.Params.Path == "" {
			return missing("path")
		}
		if len(t.Params.Contains) == 0 {
			return missing("contains")
		}
	case TypeRunCommand:
		if t.Params.Command == "" {
			return missing("command")
		}
	case TypeOutputContains:
		if t.Params.Command == "" {
			return missing("command")
		}
		if len(t.Params.Contains) == 0 {
			return missing("contains")
		}
	}

	return nil
}

// DefaultPath returns the conventional rubric location for a repo
func DefaultPath(rubricDir, repo string) string {
	return fmt.Sprintf("%s/%s.json", rubricDir, repo)
}
