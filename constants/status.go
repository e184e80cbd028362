package constants

// AnalysisStatus is the canonical status for rows in analysis_runs.
type AnalysisStatus string

// Stable values (store these exact strings in DB).
const (
	AnalysisStatusQueued   AnalysisStatus = "QUEUED"   // optional: queued for processing
	AnalysisStatusRunning  AnalysisStatus = "RUNNING"  // in progress
	AnalysisStatusAnalyzed AnalysisStatus = "ANALYZED" // report produced
	AnalysisStatusFailed   AnalysisStatus = "FAILED"   // terminal failure
)
