package llm

import "context"

// Client defines an interface for sending a single-shot prompt to a local
// text model and receiving its free-text reply. No structured schema is
// assumed on either side.
type Client interface {
	Chat(ctx context.Context, prompt string) (string, error)
}
