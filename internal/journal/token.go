package journal

import (
	"sync"

	"github.com/google/uuid"
)

// TokenSource produces call tokens for journal entries.
type TokenSource interface {
	Next() string
}

// UUIDv7Source generates time-sortable UUIDv7 call tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by creation time, which helps when eyeballing a journal. The
// token never participates in ordering decisions - seq does that.
//
// Thread-safety: UUIDv7Source is stateless and safe for concurrent use.
type UUIDv7Source struct{}

// Next creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Source) Next() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedSource returns predetermined call tokens.
//
// Replay feeds it the tokens recorded in the original journal so the rebuilt
// journal matches byte-for-byte; tests feed it known tokens for golden
// comparisons.
type FixedSource struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedSource creates a source that returns tokens in order.
func NewFixedSource(tokens ...string) *FixedSource {
	return &FixedSource{tokens: tokens}
}

// Next returns the next predetermined token.
//
// Panics if all tokens have been consumed. This is a fail-fast approach to
// catch misconfiguration (more calls issued than tokens supplied).
func (s *FixedSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.tokens) {
		panic("FixedSource: all tokens exhausted")
	}
	token := s.tokens[s.idx]
	s.idx++
	return token
}
