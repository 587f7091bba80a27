package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhirajnair/pspec/internal/review"
)

// Formats accepted by GetWriter.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatSARIF = "sarif"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatSARIF}

// Report is one review ready for rendering.
type Report struct {
	Tool          string `json:"tool" yaml:"tool"`
	Version       string `json:"version" yaml:"version"`
	Source        string `json:"source" yaml:"source"`
	review.Result `yaml:",inline"`
}

// NewReport wraps a review result for rendering.
func NewReport(tool, version, source string, res *review.Result) *Report {
	return &Report{Tool: tool, Version: version, Source: source, Result: *res}
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case FormatText, "":
		return &TextWriter{}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatYAML:
		return &YAMLWriter{}, nil
	case FormatSARIF:
		return &SARIFWriter{}, nil
	}
	return nil, fmt.Errorf("unsupported output format: %s", format)
}

// JSONWriter outputs the full report as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *Report) error {
	return WriteJSON(w, report)
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// YAMLWriter outputs the full report as YAML.
type YAMLWriter struct{}

func (y *YAMLWriter) Write(w io.Writer, report *Report) error {
	return WriteYAML(w, report)
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
