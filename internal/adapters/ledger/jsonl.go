// Package ledger contains the JSONL implementation of the append-only
// ledger store. One JSON object per line; entries are written once and
// never rewritten, so the file itself is the audit trail.
package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/example/foreman/internal/models"
	"github.com/example/foreman/internal/ports/secondary"
)

// JSONLStore implements secondary.LedgerStore with an append-only JSONL file.
type JSONLStore struct {
	path string

	mu   sync.Mutex // serializes appends; reads open their own handle
	file *os.File
}

// NewJSONLStore opens (or creates) the ledger file at path.
func NewJSONLStore(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &secondary.StorageUnavailableError{Op: "open ledger", Err: err}
	}
	return &JSONLStore{path: path, file: f}, nil
}

// Append writes one entry. Content is never rejected; only an I/O
// failure surfaces, as *StorageUnavailableError.
func (s *JSONLStore) Append(ctx context.Context, entry models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return &secondary.StorageUnavailableError{Op: "encode ledger entry", Err: err}
	}
	data = append(data, '\n')

	if _, err := s.file.Write(data); err != nil {
		return &secondary.StorageUnavailableError{Op: "append ledger entry", Err: err}
	}
	return nil
}

// Read scans the file with a fresh handle, so reads never block the
// writer. Entries return in append order; malformed lines are skipped
// rather than failing the whole read.
func (s *JSONLStore) Read(ctx context.Context, filter secondary.LedgerFilter) ([]models.LedgerEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &secondary.StorageUnavailableError{Op: "read ledger", Err: err}
	}
	defer f.Close()

	var entries []models.LedgerEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry models.LedgerEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		if matches(entry, filter) {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &secondary.StorageUnavailableError{Op: "read ledger", Err: err}
	}

	return entries, nil
}

// Close closes the append handle.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func matches(entry models.LedgerEntry, filter secondary.LedgerFilter) bool {
	if filter.PlanID != "" && entry.PlanID != filter.PlanID {
		return false
	}
	if filter.TaskRef != "" && entry.TaskRef != filter.TaskRef {
		return false
	}
	if filter.Kind != "" && entry.Kind != filter.Kind {
		return false
	}
	return true
}

// Ensure JSONLStore implements the interface
var _ secondary.LedgerStore = (*JSONLStore)(nil)
