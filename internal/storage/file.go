package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mkonrad/wikiharvest/internal/types"
)

// Letters and digits in any script are kept; accented keywords like
// "Kurt Gödel" keep their characters rather than losing them.
var punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// SafeFilename derives a filesystem-safe name from a keyword: common symbol
// substitution ("+" reads as "p", so "C++" keeps its identity as "cpp"),
// punctuation stripped, whitespace collapsed to underscores, lower-cased.
func SafeFilename(keyword string) string {
	s := strings.ReplaceAll(keyword, "+", "p")
	s = punctuationRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "_")
	return strings.ToLower(s)
}

// FileStore writes one single-line JSON file per record plus a timestamped
// CSV summary table at end of run.
type FileStore struct {
	outputDir string
	logger    *slog.Logger
}

// NewFileStore creates the output directory and returns a file store.
func NewFileStore(outputDir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileStore{
		outputDir: outputDir,
		logger:    logger.With("component", "file_store"),
	}, nil
}

func (s *FileStore) Name() string { return "file" }

// Persist writes the record as a single JSON line to <outdir>/<safe_keyword>.json.
func (s *FileStore) Persist(_ context.Context, rec *types.ArticleRecord) error {
	filename := SafeFilename(rec.Keyword) + ".json"
	path := filepath.Join(s.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSON: %w", err)}
	}

	s.logger.Info("saved article data", "keyword", rec.Keyword, "file", filename)
	return nil
}

// Finalize writes wikipedia_summary_<YYYYMMDD_HHMMSS>.csv with one row per
// record. Nothing is written for an empty run.
func (s *FileStore) Finalize(_ context.Context, records []*types.ArticleRecord) error {
	if len(records) == 0 {
		return nil
	}

	filename := fmt.Sprintf("wikipedia_summary_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.outputDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"keyword", "title", "url", "summary"}); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("write CSV header: %w", err)}
	}
	for _, rec := range records {
		row := types.NewSummaryRow(rec)
		if err := w.Write([]string{row.Keyword, row.Title, row.URL, row.Summary}); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("write CSV row: %w", err)}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}

	s.logger.Info("saved summary", "file", filename, "rows", len(records))
	return nil
}

func (s *FileStore) Close() error { return nil }
