package decompose

import "context"

// Completer is the consumer interface for the language model used to
// decompose queries (ISP).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
