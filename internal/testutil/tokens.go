package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequenceTokens generates "<prefix>-1", "<prefix>-2", ... without ever
// running out, so a test can refresh as often as it likes and still get
// reproducible pass tokens.
//
// Safe for concurrent use.
type SequenceTokens struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceTokens creates a generator. An empty prefix means "pass".
func NewSequenceTokens(prefix string) *SequenceTokens {
	if prefix == "" {
		prefix = "pass"
	}
	return &SequenceTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequenceTokens) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}
