package testutil

import (
	"context"
	"sync"

	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/source"
)

// Reader is a source.Reader over a swappable in-memory dataset. Any
// resource can be made to fail, and calls are counted per resource.
type Reader struct {
	mu    sync.Mutex
	fix   *source.Fixture
	fail  map[record.Kind]error
	calls map[record.Kind]int
}

var _ source.Reader = (*Reader)(nil)

// NewReader serves d, normalized as source.NewFixture does.
func NewReader(d source.Dataset) *Reader {
	return &Reader{
		fix:   source.NewFixture(d, nil),
		fail:  make(map[record.Kind]error),
		calls: make(map[record.Kind]int),
	}
}

// Set replaces the dataset for later calls.
func (r *Reader) Set(d source.Dataset) {
	fix := source.NewFixture(d, nil)
	r.mu.Lock()
	r.fix = fix
	r.mu.Unlock()
}

// Fail makes every later read of kind return err. A nil err clears it.
func (r *Reader) Fail(kind record.Kind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, kind)
		return
	}
	r.fail[kind] = err
}

// Calls returns how often kind was read.
func (r *Reader) Calls(kind record.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[kind]
}

func (r *Reader) begin(kind record.Kind) (*source.Fixture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[kind]++
	return r.fix, r.fail[kind]
}

func (r *Reader) Editions(ctx context.Context) ([]record.Edition, error) {
	fix, err := r.begin(record.KindEdition)
	if err != nil {
		return nil, err
	}
	return fix.Editions(ctx)
}

func (r *Reader) Trophies(ctx context.Context, projects []record.Selector) ([]record.TrophyDefinition, error) {
	fix, err := r.begin(record.KindTrophy)
	if err != nil {
		return nil, err
	}
	return fix.Trophies(ctx, projects)
}

func (r *Reader) Progress(ctx context.Context, projects []record.Selector) ([]record.ProgressRecord, error) {
	fix, err := r.begin(record.KindProgress)
	if err != nil {
		return nil, err
	}
	return fix.Progress(ctx, projects)
}

func (r *Reader) Sessions(ctx context.Context, projects []record.Selector) ([]record.Session, error) {
	fix, err := r.begin(record.KindSession)
	if err != nil {
		return nil, err
	}
	return fix.Sessions(ctx, projects)
}

func (r *Reader) Pins(ctx context.Context, projects []record.Selector) ([]record.PinEvent, error) {
	fix, err := r.begin(record.KindPin)
	if err != nil {
		return nil, err
	}
	return fix.Pins(ctx, projects)
}

func (r *Reader) Follows(ctx context.Context, projects []record.Selector) ([]record.FollowEvent, error) {
	fix, err := r.begin(record.KindFollow)
	if err != nil {
		return nil, err
	}
	return fix.Follows(ctx, projects)
}

func (r *Reader) Accounts(ctx context.Context, addresses []record.Address) ([]record.Account, error) {
	fix, err := r.begin(record.KindAccount)
	if err != nil {
		return nil, err
	}
	return fix.Accounts(ctx, addresses)
}
