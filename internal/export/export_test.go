package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/risk"
	"github.com/joseph-ayodele/contracts-analyzer/internal/unfavorable"
)

func sampleReport() pipeline.Report {
	return pipeline.Report{
		Document:      "employment.pdf",
		ContractType:  constants.Employment,
		Summary:       "The employee works full time. Notice is not required",
		SummaryPoints: []string{"The employee works full time", "Notice is not required"},
		Risk: risk.Report{Score: 5, Findings: []risk.Finding{
			{Term: "penalty", Severity: constants.SeverityHigh, Explanation: "May impose financial loss if conditions are violated."},
			{Term: "termination", Severity: constants.SeverityMedium, Explanation: "Check notice period and conditions."},
		}},
		Unfavorable: []unfavorable.Finding{
			{Term: "termination without notice", Explanation: "Allows one party to end the agreement suddenly.", Snippet: "penalty clause and termination without notice provisions"},
		},
	}
}

func TestUnfavorableReport(t *testing.T) {
	got := UnfavorableReport([]unfavorable.Finding{
		{Term: "auto-renewal", Explanation: "Renews silently.", Snippet: "auto-renewal applies"},
		{Term: "non-compete", Explanation: "Restricts work.", Snippet: "a non-compete clause"},
	})
	want := "AUTO-RENEWAL:\nRenews silently.\nContext: auto-renewal applies\n\nNON-COMPETE:\nRestricts work.\nContext: a non-compete clause"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	if UnfavorableReport(nil) != "" {
		t.Error("empty findings must render empty")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(), ""); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Contract Type: Employment",
		"1. The employee works full time",
		"2. Notice is not required",
		"Overall Risk Score: 5/10",
		"- Penalty (High Risk): May impose financial loss",
		"TERMINATION WITHOUT NOTICE:\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Translated Summary") {
		t.Error("translation section without translation")
	}
}

func TestReportXLSX(t *testing.T) {
	b, err := ReportXLSX(sampleReport())
	if err != nil {
		t.Fatalf("ReportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()

	if got := f.GetSheetList(); len(got) != 3 || got[0] != SheetSummary || got[1] != SheetRisk || got[2] != SheetUnfavorable {
		t.Fatalf("sheets = %v", got)
	}
	if v, _ := f.GetCellValue(SheetSummary, "B2"); v != "Employment" {
		t.Errorf("B2 = %q", v)
	}
	if v, _ := f.GetCellValue(SheetSummary, "B3"); v != "5" {
		t.Errorf("B3 = %q", v)
	}
	rows, _ := f.GetRows(SheetRisk)
	if len(rows) != 3 || rows[1][0] != "penalty" || rows[2][1] != "Medium" {
		t.Errorf("risk rows = %v", rows)
	}
	if v, _ := f.GetCellValue(SheetUnfavorable, "C2"); !strings.Contains(v, "termination without notice") {
		t.Errorf("unfavorable context = %q", v)
	}
}

func TestBatchXLSX(t *testing.T) {
	b, err := BatchXLSX([]BatchRow{
		{Path: "a.pdf", Report: sampleReport()},
		{Path: "b.pdf", Err: errors.New("EXTRACTION_ERROR [extract]: no extractable text")},
	})
	if err != nil {
		t.Fatalf("BatchXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetContracts)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][1] != "Employment" || rows[1][3] != "penalty, termination" {
		t.Errorf("row 2 = %v", rows[1])
	}
	if last := rows[2][len(rows[2])-1]; !strings.Contains(last, "no extractable text") {
		t.Errorf("row 3 = %v", rows[2])
	}
}
