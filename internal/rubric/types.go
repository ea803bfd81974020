package rubric

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TestType enumerates the seven supported check kinds
type TestType string

const (
	TypeCommandsExist  TestType = "commands_exist"
	TypeEnvvarSet      TestType = "envvar_set"
	TypeDirsExist      TestType = "dirs_exist"
	TypeFilesExist     TestType = "files_exist"
	TypeFileContains   TestType = "file_contains"
	TypeRunCommand     TestType = "run_command"
	TypeOutputContains TestType = "output_contains"
)

// KnownTypes lists all valid test types in a stable order
var KnownTypes = []TestType{
	TypeCommandsExist,
	TypeEnvvarSet,
	TypeDirsExist,
	TypeFilesExist,
	TypeFileContains,
	TypeRunCommand,
	TypeOutputContains,
}

// Valid reports whether the type is one of the seven known kinds
func (t TestType) Valid() bool {
	for _, known := range KnownTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Category groups tests for reporting; it never affects execution order
type Category string

const (
	CategoryStructure     Category = "structure"
	CategoryConfiguration Category = "configuration"
	CategoryFunctionality Category = "functionality"
)

// Valid reports whether the category is empty or one of the known groups
func (c Category) Valid() bool {
	switch c {
	case "", CategoryStructure, CategoryConfiguration, CategoryFunctionality:
		return true
	}
	return false
}

// StringList decodes a JSON array whose elements may be strings or scalars.
// Rubric authors occasionally write numbers in contains lists; those compare
// as their decimal string form, matching the substring check.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(v))
		default:
			return fmt.Errorf("unsupported list element %v (%T)", item, item)
		}
	}
	*s = out
	return nil
}

// Params carries the kind-specific arguments of a TestSpec.
// Only the fields relevant to the test's type are consulted.
type Params struct {
	// Names is the command list for commands_exist
	Names []string `json:"names,omitempty"`

	// Paths is the path list for files_exist and dirs_exist
	Paths []string `json:"paths,omitempty"`

	// Name is the variable name for envvar_set
	Name string `json:"name,omitempty"`

	// Path is the file path for file_contains
	Path string `json:"path,omitempty"`

	// Command is the shell command for run_command and output_contains
	Command string `json:"command,omitempty"`

	// Contains holds the required substrings for file_contains and output_contains
	Contains StringList `json:"contains,omitempty"`
}

// TestSpec describes one verifiable condition from a rubric
type TestSpec struct {
	ID       string   `json:"id,omitempty"`
	Type     TestType `json:"type"`
	Params   *Params  `json:"params"`
	Timeout  int      `json:"timeout,omitempty"` // seconds
	Score    int      `json:"score,omitempty"`
	Category Category `json:"category,omitempty"`
	Requires []string `json:"requires,omitempty"`
}

// Rubric is the parsed, validated test suite for one repository.
// It is immutable after Load returns.
type Rubric struct {
	Repo  string     `json:"repo"`
	Tests []TestSpec `json:"tests"`

	index map[string]int
}

// New builds an in-memory rubric and resolves its id index. Tests built
// this way skip Load's defaulting and validation.
func New(repo string, tests []TestSpec) *Rubric {
	r := &Rubric{Repo: repo, Tests: tests, index: make(map[string]int, len(tests))}
	for i, t := range tests {
		r.index[t.ID] = i
	}
	return r
}

// Index returns the dense position of a test id, resolved once at load time
func (r *Rubric) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// MaxScore is the sum of every defined test score
func (r *Rubric) MaxScore() int {
	total := 0
	for _, t := range r.Tests {
		total += t.Score
	}
	return total
}
