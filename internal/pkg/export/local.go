package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

var fieldSanitizer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// LocalStore writes tab-separated snapshots into a directory
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates baseDir if needed
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", baseDir).Msg("Failed to create export directory")
		return nil, fmt.Errorf("failed to create export directory %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Path returns the filesystem location of name
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}

// WriteTable writes to a temp file in the same directory and renames it over name,
// so readers never see a half-written snapshot.
func (s *LocalStore) WriteTable(name string, header []string, rows [][]string) error {
	dstPath := s.Path(name)
	tmpPath := filepath.Join(s.baseDir, "."+filepath.Base(name)+"."+uuid.New().String()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp export file: %w", err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(FormatLine(header)); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, row := range rows {
		if _, err := w.WriteString(FormatLine(row)); err != nil {
			f.Close()
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to flush export file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close export file: %w", err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace export file: %w", err)
	}

	logger.Debug().Str("path", dstPath).Int("rows", len(rows)).Msg("Export written")
	return nil
}

// AppendLine appends one line in a single write
func (s *LocalStore) AppendLine(name string, fields []string) error {
	path := s.Path(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(fields)); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

// FormatLine joins fields with tabs and terminates with a newline.
// Embedded tabs and line breaks become spaces so one record stays one line.
func FormatLine(fields []string) string {
	cleaned := make([]string, len(fields))
	for i, f := range fields {
		cleaned[i] = fieldSanitizer.Replace(f)
	}
	return strings.Join(cleaned, "\t") + "\n"
}
