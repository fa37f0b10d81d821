// Package tables provides append-only delimited table storage for processed
// extraction results, with optional per-patient partitioning.
package tables

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// System persists rows of delimited tables. Appends to the same table path
// are serialized, so a System is safe for concurrent use across runs.
type System interface {
	// Append writes rows to the named table under the configured base
	// directory, creating the table with a header row on first write and
	// appending thereafter. The patient identifier is stamped onto every
	// row as a trailing patient_id column regardless of the declared
	// columns. With zero rows the table still exists header-only after the
	// call. Returns the table path. Append is explicitly not idempotent.
	Append(table, patientID string, columns []string, rows [][]string) (string, error)
}

type local struct {
	baseDir string
	split   bool
	logger  *slog.Logger

	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

// New creates a table storage system from the given configuration.
func New(cfg *Config, logger *slog.Logger) System {
	return &local{
		baseDir: cfg.BaseDir,
		split:   cfg.SplitPatient,
		logger:  logger.With("system", "tables"),
		paths:   make(map[string]*sync.Mutex),
	}
}

func (l *local) Append(table, patientID string, columns []string, rows [][]string) (string, error) {
	if err := validateTableName(table); err != nil {
		return "", err
	}

	dir := l.baseDir
	if l.split {
		// collision-safe encoding keeps path-unsafe patient identifiers
		// from corrupting the output location
		dir = filepath.Join(dir, base64.URLEncoding.EncodeToString([]byte(patientID)))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create directory: %w", ErrWriteFailed, err)
	}

	path := filepath.Join(dir, table+".csv")

	l.pathLock(path).Lock()
	defer l.pathLock(path).Unlock()

	writeHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrWriteFailed, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if writeHeader {
		header := append(append([]string{}, columns...), "patient_id")
		if err := w.Write(header); err != nil {
			return "", fmt.Errorf("%w: write header: %w", ErrWriteFailed, err)
		}
	}

	for _, row := range rows {
		stamped := append(append([]string{}, row...), patientID)
		if err := w.Write(stamped); err != nil {
			return "", fmt.Errorf("%w: write row: %w", ErrWriteFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("%w: flush %s: %w", ErrWriteFailed, path, err)
	}

	l.logger.Debug("rows appended", "table", table, "path", path, "rows", len(rows))
	return path, nil
}

func (l *local) pathLock(path string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.paths[path]; !ok {
		l.paths[path] = &sync.Mutex{}
	}
	return l.paths[path]
}

func validateTableName(table string) error {
	if table == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTableName)
	}
	if strings.ContainsAny(table, `/\`) || strings.Contains(table, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}
	return nil
}
