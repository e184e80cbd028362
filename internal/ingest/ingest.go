// Package ingest discovers contract PDFs on disk and fingerprints their content.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Candidate is one discovered file. DuplicateOf names the first path with the same content.
type Candidate struct {
	Path        string
	HashHex     string
	Size        int64
	DuplicateOf string
	Err         string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Unique       uint32
	Deduplicated uint32
	Failed       uint32
}

// Discover walks root, keeps allowed extensions, hashes each match and flags duplicates.
// Per-file failures are reported on the Candidate and do not stop the walk.
func Discover(ctx context.Context, root string, skipHidden bool, logger *slog.Logger) ([]Candidate, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []Candidate
	var stats DirStats
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Candidate{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		sum, size, err := HashFile(path)
		if err != nil {
			logger.Warn("ingest.hash_failed", "path", path, "error", err)
			results = append(results, Candidate{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		c := Candidate{Path: path, HashHex: sum, Size: size}
		if first, ok := seen[sum]; ok {
			c.DuplicateOf = first
			stats.Deduplicated++
			logger.Info("ingest.duplicate", "path", path, "duplicate_of", first)
		} else {
			seen[sum] = path
			stats.Unique++
		}
		results = append(results, c)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	logger.Info("ingest.discovered",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"unique", stats.Unique,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

// HashFile returns the hex SHA-256 and size of the file at path.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
