package audit

import "context"

// Sink is the external audit storage interface. The core only appends;
// queries, retention, and disclosure belong to the storage system.
type Sink interface {
	// Append persists one record. It must be durable before returning.
	Append(ctx context.Context, record *Record) error

	// Close releases sink resources.
	Close() error
}

// Archive is the read side used exclusively by offline verification and
// replay tooling. The live recorder never consumes it.
type Archive interface {
	// LoadAll returns every archived record in sequence order.
	LoadAll(ctx context.Context) ([]*Record, error)
}
