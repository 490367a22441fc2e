// Package surface defines output rendering for type density reports.
// Implementations handle different output targets: terminal, JSON, CSV, Markdown.
package surface

import (
	"fmt"
	"io"

	"github.com/typedensity/typedensity/pkg/report"
)

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, r *report.Report) error
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "csv":
		return &CSVRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json, csv or markdown)", format)
}
