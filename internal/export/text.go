package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/unfavorable"
)

// UnfavorableReport renders findings as "TERM:\nexplanation\nContext: snippet" blocks
// separated by blank lines.
func UnfavorableReport(findings []unfavorable.Finding) string {
	blocks := make([]string, 0, len(findings))
	for _, f := range findings {
		blocks = append(blocks, fmt.Sprintf("%s:\n%s\nContext: %s", strings.ToUpper(f.Term), f.Explanation, f.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}

// WriteText writes a human-readable report. translated is included when non-empty.
func WriteText(w io.Writer, r pipeline.Report, translated string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Contract: %s\n", r.Document)
	fmt.Fprintf(&b, "Contract Type: %s\n", r.ContractType)
	if r.Extraction.Method != "" {
		fmt.Fprintf(&b, "Extraction: %s, %d page(s)\n", r.Extraction.Method, r.Extraction.PageCount)
	}

	b.WriteString("\nKey Summary Points\n")
	if len(r.SummaryPoints) == 0 {
		b.WriteString("(no summary)\n")
	}
	for i, p := range r.SummaryPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	if translated != "" {
		fmt.Fprintf(&b, "\nTranslated Summary\n%s\n", translated)
	}

	fmt.Fprintf(&b, "\nOverall Risk Score: %d/%d\n", r.Risk.Score, constants.MaxRiskScore)
	if len(r.Risk.Findings) == 0 {
		b.WriteString("No risky terms detected.\n")
	}
	for _, f := range r.Risk.Findings {
		fmt.Fprintf(&b, "- %s (%s Risk): %s\n", capitalize(f.Term), f.Severity, f.Explanation)
	}

	b.WriteString("\nUnfavorable Terms\n")
	if len(r.Unfavorable) == 0 {
		b.WriteString("No unfavorable terms detected.\n")
	} else {
		b.WriteString(UnfavorableReport(r.Unfavorable))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
