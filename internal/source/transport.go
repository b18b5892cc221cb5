package source

import (
	"context"

	"github.com/roach88/arcade/internal/record"
)

// Request is one resource query.
type Request struct {
	Kind      record.Kind
	Projects  []record.Selector
	Addresses []string
}

// Transport fetches raw response documents.
type Transport interface {
	Query(ctx context.Context, req Request) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req Request) ([]byte, error)

// Query calls f.
func (f TransportFunc) Query(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// Reader provides typed record sets. Client, Fixture and the snapshot
// store implement it.
type Reader interface {
	Editions(ctx context.Context) ([]record.Edition, error)
	Trophies(ctx context.Context, projects []record.Selector) ([]record.TrophyDefinition, error)
	Progress(ctx context.Context, projects []record.Selector) ([]record.ProgressRecord, error)
	Sessions(ctx context.Context, projects []record.Selector) ([]record.Session, error)
	Pins(ctx context.Context, projects []record.Selector) ([]record.PinEvent, error)
	Follows(ctx context.Context, projects []record.Selector) ([]record.FollowEvent, error)
	Accounts(ctx context.Context, addresses []record.Address) ([]record.Account, error)
}
