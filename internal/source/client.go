package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/goccy/go-json"

	"github.com/roach88/arcade/internal/record"
)

// Client decodes transport documents into records.
type Client struct {
	transport Transport
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for dropped rows.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client over t.
func NewClient(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Reader = (*Client)(nil)

// Editions returns every registry entry the transport knows.
func (c *Client) Editions(ctx context.Context) ([]record.Edition, error) {
	return fetch[wireEdition, record.Edition](ctx, c, Request{Kind: record.KindEdition})
}

// Trophies returns the definitions of the selected projects.
func (c *Client) Trophies(ctx context.Context, projects []record.Selector) ([]record.TrophyDefinition, error) {
	return fetch[wireTrophy, record.TrophyDefinition](ctx, c, Request{Kind: record.KindTrophy, Projects: projects})
}

// Progress returns the task progress of the selected projects.
func (c *Client) Progress(ctx context.Context, projects []record.Selector) ([]record.ProgressRecord, error) {
	return fetch[wireProgress, record.ProgressRecord](ctx, c, Request{Kind: record.KindProgress, Projects: projects})
}

// Sessions returns the play sessions of the selected projects.
func (c *Client) Sessions(ctx context.Context, projects []record.Selector) ([]record.Session, error) {
	return fetch[wireSession, record.Session](ctx, c, Request{Kind: record.KindSession, Projects: projects})
}

// Pins returns pin events numbered in document order.
func (c *Client) Pins(ctx context.Context, projects []record.Selector) ([]record.PinEvent, error) {
	events, err := fetch[wirePin, record.PinEvent](ctx, c, Request{Kind: record.KindPin, Projects: projects})
	for i := range events {
		events[i].Seq = int64(i + 1)
	}
	return events, err
}

// Follows returns follow events numbered in document order.
func (c *Client) Follows(ctx context.Context, projects []record.Selector) ([]record.FollowEvent, error) {
	events, err := fetch[wireFollow, record.FollowEvent](ctx, c, Request{Kind: record.KindFollow, Projects: projects})
	for i := range events {
		events[i].Seq = int64(i + 1)
	}
	return events, err
}

// Accounts returns the accounts of the given addresses. Rows for other
// addresses are discarded.
func (c *Client) Accounts(ctx context.Context, addresses []record.Address) ([]record.Account, error) {
	if len(addresses) == 0 {
		return []record.Account{}, nil
	}
	raw := make([]string, len(addresses))
	for i, a := range addresses {
		raw[i] = a.String()
	}
	accounts, err := fetch[wireAccount, record.Account](ctx, c, Request{Kind: record.KindAccount, Addresses: raw})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(accounts, func(a record.Account) bool {
		return !slices.Contains(addresses, a.Address)
	}), nil
}

type wireRow[R any] interface {
	record(project string) (R, error)
}

func fetch[W wireRow[R], R record.Row](ctx context.Context, c *Client, req Request) ([]R, error) {
	doc, err := c.transport.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	return decode[W, R](c.logger, req.Kind, doc)
}

// decode flattens a response document. Only a document that is not a
// JSON array fails the batch; anything smaller is dropped and logged.
func decode[W wireRow[R], R record.Row](logger *slog.Logger, kind record.Kind, doc []byte) ([]R, error) {
	var envelopes []map[string]json.RawMessage
	if err := json.Unmarshal(doc, &envelopes); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", kind.Resource(), err)
	}

	out := []R{}
	for i, env := range envelopes {
		var meta struct {
			Project string `json:"project"`
		}
		if raw, ok := env["meta"]; ok {
			if err := json.Unmarshal(raw, &meta); err != nil {
				drop(logger, record.NewValidationError(kind, "envelope %d meta: %v", i, err))
				continue
			}
		}

		var rows []json.RawMessage
		if raw, ok := env[kind.Resource()]; ok {
			if err := json.Unmarshal(raw, &rows); err != nil {
				drop(logger, record.NewValidationError(kind, "envelope %d (%s): %v", i, meta.Project, err))
				continue
			}
		}

		for j, raw := range rows {
			var w W
			if err := json.Unmarshal(raw, &w); err != nil {
				drop(logger, record.NewValidationError(kind, "%s row %d: %v", meta.Project, j, err))
				continue
			}
			r, err := w.record(meta.Project)
			if err != nil {
				drop(logger, err)
				continue
			}
			if err := r.Validate(); err != nil {
				drop(logger, err, "row", record.Describe(r))
				continue
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func drop(logger *slog.Logger, err error, attrs ...any) {
	logger.Warn("row dropped", append([]any{"error", err}, attrs...)...)
}
