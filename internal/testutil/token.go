package testutil

import "github.com/google/uuid"

// TokenSource produces run tokens. A run token tags one harness
// execution so its trace can be told apart from other runs.
type TokenSource interface {
	Next() string
}

// NewRunToken creates a time-sortable UUIDv7 run token. The CLI uses it
// for real runs; scenarios use FixedTokens instead so goldens stay
// stable.
//
// Panics if UUID generation fails, which does not happen in practice.
func NewRunToken() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokens returns the same token every time. Scenarios that are
// compared against golden files need the token pinned; the default keeps
// scenario files that don't care about the value terse.
//
// FixedTokens is stateless and safe for concurrent use.
type FixedTokens struct {
	token string
}

// NewFixedTokens creates a source for the given token. An empty token
// falls back to "test-run-default".
func NewFixedTokens(token string) *FixedTokens {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedTokens{token: token}
}

// Next returns the fixed token.
func (g *FixedTokens) Next() string {
	return g.token
}
