package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/typedensity/typedensity/pkg/report"
)

// MarkdownRenderer renders a Report as a Markdown table, suitable for a
// pull request comment or a job summary.
type MarkdownRenderer struct {
	// MaxRows limits the table; 0 means 50.
	MaxRows int
}

func (r *MarkdownRenderer) Render(w io.Writer, rep *report.Report) error {
	_, err := io.WriteString(w, r.BuildSummary(rep))
	return err
}

// BuildSummary creates the Markdown body for a Report.
func (r *MarkdownRenderer) BuildSummary(rep *report.Report) string {
	var sb strings.Builder

	s := rep.Summary
	sb.WriteString(fmt.Sprintf("## Type density: %d files, weight %d → %d\n\n",
		s.Files, s.Weight, s.WeightWithoutPrivate))

	sb.WriteString("| Source file | Weight | Without private |\n|--------|-------|-------|\n")
	limit := r.MaxRows
	if limit <= 0 {
		limit = 50
	}
	for i, row := range rep.Rows {
		if i >= limit {
			sb.WriteString(fmt.Sprintf("\n_... and %d more files_\n", len(rep.Rows)-limit))
			break
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %d | %d |\n", row.SourceFile, row.Weight, row.WeightWithoutPrivate))
	}
	sb.WriteString("\n")

	if s.CanonicalTypes > 0 {
		sb.WriteString(fmt.Sprintf("_%d canonical types in the variant cache._\n", s.CanonicalTypes))
	}
	return sb.String()
}
