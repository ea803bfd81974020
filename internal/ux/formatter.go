package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/envgauge/envgauge/internal/eval"
)

// Formatter writes evaluation output in one serialization format.
type Formatter interface {
	Format(data interface{}) error
}

// FormatterOptions configures where and how output is written.
type FormatterOptions struct {
	// Writer receives the output (defaults to os.Stdout)
	Writer io.Writer
	// NoColor disables styled output for the text formatter
	NoColor bool
	// Compact drops indentation for JSON and YAML
	Compact bool
}

func (o *FormatterOptions) writer() io.Writer {
	if o == nil || o.Writer == nil {
		return os.Stdout
	}
	return o.Writer
}

// NewFormatter selects a formatter by name: "json", "yaml", or "text"
// (the default).
func NewFormatter(format string, opts *FormatterOptions) (Formatter, error) {
	if opts == nil {
		opts = &FormatterOptions{}
	}

	switch format {
	case "json":
		return &JSONFormatter{w: opts.writer(), compact: opts.Compact}, nil
	case "yaml":
		return &YAMLFormatter{w: opts.writer(), compact: opts.Compact}, nil
	case "text", "":
		return &TextFormatter{w: opts.writer(), noColor: opts.NoColor}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

// JSONFormatter emits indented (or compact) JSON
type JSONFormatter struct {
	w       io.Writer
	compact bool
}

func (f *JSONFormatter) Format(data interface{}) error {
	enc := json.NewEncoder(f.w)
	if !f.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

// YAMLFormatter emits YAML
type YAMLFormatter struct {
	w       io.Writer
	compact bool
}

func (f *YAMLFormatter) Format(data interface{}) error {
	enc := yaml.NewEncoder(f.w)
	if !f.compact {
		enc.SetIndent(2)
	}
	defer enc.Close()
	return enc.Encode(data)
}

// TextFormatter writes human-readable output. Evaluation reports get the
// styled rendering; anything else needs a String method or be a string.
type TextFormatter struct {
	w       io.Writer
	noColor bool
}

func (f *TextFormatter) Format(data interface{}) error {
	switch v := data.(type) {
	case *eval.Report:
		return RenderReport(f.w, v, f.noColor)
	case string:
		_, err := fmt.Fprintln(f.w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.w, v.String())
		return err
	default:
		return fmt.Errorf("text formatter requires an evaluation report, a String() method, or a plain string")
	}
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
	_ Formatter = (*TextFormatter)(nil)
)
