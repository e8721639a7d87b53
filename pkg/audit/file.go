package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
)

// FileSink appends records as JSON lines to an append-only file. Each append
// is synced before returning so a record acknowledged to the recorder is
// durable.
type FileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewFileSink opens (or creates) the audit log file in append-only mode.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, NewSinkError("file", "open", err)
	}
	return &FileSink{path: path, file: file}, nil
}

// Append writes one record as a JSON line and syncs.
func (s *FileSink) Append(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return NewSinkError("file", "append", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(data); err != nil {
		return NewSinkError("file", "append", err)
	}
	if err := s.file.Sync(); err != nil {
		return NewSinkError("file", "append", err)
	}
	return nil
}

// LoadAll reads the whole file back as records, in append order.
func (s *FileSink) LoadAll(ctx context.Context) ([]*Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewSinkError("file", "load", err)
	}
	defer f.Close()

	var records []*Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, NewSinkError("file", "load", err)
		}
		records = append(records, &record)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewSinkError("file", "load", err)
	}
	return records, nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
