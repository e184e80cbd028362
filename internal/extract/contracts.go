package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document is the pipeline input: a PDF on disk (Path) or in memory (Content).
// Name is used for logging and for the format check when only Content is set.
type Document struct {
	Name    string
	Path    string
	Content []byte
	Hash    string // hex SHA-256 of the file; filled by callers that already read it
}

// ExtractedText is the text body of a document. Pages are kept as metadata only.
type ExtractedText struct {
	Text       string        `json:"-"`
	Pages      []string      `json:"-"`
	PageCount  int           `json:"pages"`
	Method     string        `json:"method"` // "pdf-text" | "pdf-ocr"
	Language   string        `json:"language,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Warnings   []string      `json:"warnings,omitempty"`
	Confidence float32       `json:"confidence,omitempty"`
}

// TextExtractor is Stage 1: document -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc Document) (ExtractedText, error)
}

// ContentHash is the hex SHA-256 of raw document bytes.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
