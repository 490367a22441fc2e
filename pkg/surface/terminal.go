package surface

import (
	"fmt"
	"io"
	"os"

	"github.com/typedensity/typedensity/pkg/report"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// paint wraps s in an ANSI style unless NO_COLOR is set.
func paint(s, style string) string {
	if style == "" {
		return s
	}
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return s
	}
	return style + s + ansiReset
}

// reductionStyle highlights files whose weight is dominated by private members.
func reductionStyle(fraction float64) string {
	switch {
	case fraction >= 0.5:
		return ansiRed
	case fraction >= 0.2:
		return ansiYellow
	case fraction > 0:
		return ansiGreen
	}
	return ""
}

func (r *TerminalRenderer) Render(w io.Writer, rep *report.Report) error {
	s := rep.Summary

	fmt.Fprintf(w, "%s\n\n",
		paint(fmt.Sprintf("Type density: %d files, weight %d, without private %d",
			s.Files, s.Weight, s.WeightWithoutPrivate), ansiBold))

	if len(rep.Rows) == 0 {
		fmt.Fprintln(w, "No source files.")
		fmt.Fprintln(w)
		return nil
	}

	width := len("Source file")
	for _, row := range rep.Rows {
		if len(row.SourceFile) > width {
			width = len(row.SourceFile)
		}
	}

	fmt.Fprintf(w, "  %-*s  %8s  %8s  %7s\n", width, "Source file", "Weight", "Public", "Saved")
	for _, row := range rep.Rows {
		red := row.Reduction()
		fmt.Fprintf(w, "  %-*s  %8d  %8d  %s\n", width, row.SourceFile, row.Weight, row.WeightWithoutPrivate,
			paint(fmt.Sprintf("%6.1f%%", red*100), reductionStyle(red)))
	}
	fmt.Fprintln(w)

	if s.CanonicalTypes > 0 {
		fmt.Fprintf(w, "%s\n", paint(fmt.Sprintf("%d canonical types in %dms", s.CanonicalTypes, rep.DurationMs), ansiDim))
	}
	return nil
}
