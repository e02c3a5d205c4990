package delivery

import "context"

// Channel defines an interface for sending one rendered digest chunk to a
// destination. Implementations: Telegram chat, email-to-SMS gateway.
type Channel interface {
	// Send delivers a single chunk. Destination is channel-specific: a chat
	// ID for Telegram, a gateway address for SMS.
	Send(ctx context.Context, destination, text string) error

	// MaxMessageLength is the chunk size budget in characters for this
	// channel.
	MaxMessageLength() int
}

// Status is the terminal state of one digest run.
type Status string

const (
	// StatusSuccess means every chunk was delivered.
	StatusSuccess Status = "SUCCESS"
	// StatusPartial means delivery stopped mid-sequence; earlier chunks went out.
	StatusPartial Status = "PARTIAL"
	// StatusAborted means the run failed before anything was sent.
	StatusAborted Status = "ABORTED"
)

// Result describes how a digest run ended. A run always resolves to a
// Result; callers never receive an error alongside it.
type Result struct {
	RunID       string
	Status      Status
	Entries     int // assignments in the rendered digest
	ChunksTotal int
	ChunksSent  int
	Err         error // cause for PARTIAL/ABORTED, nil on SUCCESS
}
