// Package export renders analysis reports as XLSX workbooks and plain text.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
)

const (
	SheetSummary     = "Summary"
	SheetRisk        = "Risk"
	SheetUnfavorable = "Unfavorable"
	SheetContracts   = "Contracts"
)

// BatchRow is one line of the batch workbook. Err is set when the contract failed.
type BatchRow struct {
	Path   string
	Report pipeline.Report
	Err    error
}

// ReportXLSX returns a workbook (as bytes) with Summary, Risk and Unfavorable sheets.
func ReportXLSX(r pipeline.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with "Sheet1"; rename it instead of leaving an empty sheet behind.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	sw := sheetWriter{f: f, sheet: SheetSummary}
	sw.row(1, "Contract", r.Document)
	sw.row(2, "Contract Type", string(r.ContractType))
	sw.row(3, "Risk Score", r.Risk.Score)
	sw.row(4, "Extraction Method", r.Extraction.Method)
	sw.row(5, "Pages", r.Extraction.PageCount)
	sw.row(6, "Summary", r.Summary)
	for i, p := range r.SummaryPoints {
		sw.row(8+i, fmt.Sprintf("Point %d", i+1), p)
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	_ = f.SetColWidth(SheetSummary, "B", "B", 100)

	if _, err := f.NewSheet(SheetRisk); err != nil {
		return nil, err
	}
	sw.sheet = SheetRisk
	sw.row(1, "Term", "Severity", "Explanation")
	for i, finding := range r.Risk.Findings {
		sw.row(i+2, finding.Term, string(finding.Severity), finding.Explanation)
	}
	_ = f.SetColWidth(SheetRisk, "A", "B", 16)
	_ = f.SetColWidth(SheetRisk, "C", "C", 80)

	if _, err := f.NewSheet(SheetUnfavorable); err != nil {
		return nil, err
	}
	sw.sheet = SheetUnfavorable
	sw.row(1, "Term", "Explanation", "Context")
	for i, finding := range r.Unfavorable {
		sw.row(i+2, finding.Term, finding.Explanation, finding.Snippet)
	}
	_ = f.SetColWidth(SheetUnfavorable, "A", "A", 28)
	_ = f.SetColWidth(SheetUnfavorable, "B", "C", 70)

	f.SetActiveSheet(0)
	return write(f, sw.err)
}

// BatchXLSX returns a single-sheet workbook with one row per contract.
func BatchXLSX(rows []BatchRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetContracts); err != nil {
		return nil, err
	}
	sw := sheetWriter{f: f, sheet: SheetContracts}
	sw.row(1, "File", "Contract Type", "Risk Score", "Risk Terms", "Unfavorable Terms", "Summary", "Error")
	for i, br := range rows {
		if br.Err != nil {
			sw.row(i+2, br.Path, "", "", "", "", "", br.Err.Error())
			continue
		}
		r := br.Report
		var riskTerms, unfav []string
		for _, rf := range r.Risk.Findings {
			riskTerms = append(riskTerms, rf.Term)
		}
		for _, uf := range r.Unfavorable {
			unfav = append(unfav, uf.Term)
		}
		sw.row(i+2, br.Path, string(r.ContractType), r.Risk.Score, strings.Join(riskTerms, ", "), strings.Join(unfav, ", "), r.Summary, "")
	}

	_ = f.SetColWidth(SheetContracts, "A", "A", 48)
	_ = f.SetColWidth(SheetContracts, "B", "C", 14)
	_ = f.SetColWidth(SheetContracts, "D", "E", 32)
	_ = f.SetColWidth(SheetContracts, "F", "F", 80)
	_ = f.SetColWidth(SheetContracts, "G", "G", 40)
	return write(f, sw.err)
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

// row writes values into columns A, B, ... of the given 1-based row; the first error sticks.
func (w *sheetWriter) row(n int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func write(f *excelize.File, err error) ([]byte, error) {
	if err != nil {
		return nil, fmt.Errorf("xlsx fill: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
