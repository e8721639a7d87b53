package audit

import (
	"context"
	"errors"
	"sync"
)

// MemorySink is an in-process sink for tests and local runs. It implements
// both Sink and Archive.
type MemorySink struct {
	mu      sync.Mutex
	records []*Record

	// FailAppends, while positive, makes Append fail and decrements. Used
	// to exercise the recorder's retry path.
	FailAppends int

	// FailErr is the error returned while FailAppends is positive.
	FailErr error
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append stores the record.
func (s *MemorySink) Append(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppends > 0 {
		s.FailAppends--
		err := s.FailErr
		if err == nil {
			err = errors.New("injected append failure")
		}
		return NewSinkError("memory", "append", err)
	}
	s.records = append(s.records, record)
	return nil
}

// LoadAll returns the stored records in append order.
func (s *MemorySink) LoadAll(ctx context.Context) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Close is a no-op.
func (s *MemorySink) Close() error {
	return nil
}
