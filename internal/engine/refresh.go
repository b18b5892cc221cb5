package engine

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/arcade/internal/collection"
	"github.com/roach88/arcade/internal/fingerprint"
	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

// Pass describes the most recent refresh pass.
type Pass struct {
	Seq    int64         `json:"seq"`
	Token  string        `json:"token"`
	Reason string        `json:"reason"`
	Took   time.Duration `json:"took"`
	Err    error         `json:"-"`
}

// LastPass returns the most recent completed pass. Seq is zero before the
// first one.
func (e *Engine) LastPass() Pass {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	return e.last
}

// Refresh runs one pass in the calling goroutine. It waits for any pass
// already running.
//
// Each slot fails independently: the returned error joins every failed
// load, and the slots that loaded publish their rows either way.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.refresh(ctx, "refresh")
}

func (e *Engine) refresh(ctx context.Context, reason string) error {
	e.passMu.Lock()
	defer e.passMu.Unlock()

	if e.closed.Load() {
		return ErrStopped
	}

	start := time.Now()
	pass := Pass{Seq: e.clock.Next(), Token: e.tokens.Generate(), Reason: reason}
	log := e.logger.With("pass", pass.Seq, "token", pass.Token)
	log.Info("refresh started", "reason", reason)

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		if err == nil || errors.Is(err, collection.ErrSuperseded) {
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	fail(e.editions.Refresh(ctx, collection.NewKey(record.KindEdition, fingerprint.Empty), e.loadEditions))

	selectors := query.Map(e.editions.Rows(), record.Edition.Selector)
	projects := query.Map(selectors, func(s record.Selector) string { return s.Project })
	dep := e.editions.Fingerprint()
	key := func(kind record.Kind) collection.Key {
		return collection.NewKey(kind, dep, projects...)
	}

	// Goroutines report through fail and return nil: one failed resource
	// must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(e.parallel)
	g.Go(func() error {
		fail(e.trophies.Refresh(ctx, key(record.KindTrophy), func(ctx context.Context) ([]record.TrophyDefinition, error) {
			return e.reader.Trophies(ctx, selectors)
		}))
		return nil
	})
	g.Go(func() error {
		fail(e.progress.Refresh(ctx, key(record.KindProgress), func(ctx context.Context) ([]record.ProgressRecord, error) {
			return e.reader.Progress(ctx, selectors)
		}))
		return nil
	})
	g.Go(func() error {
		fail(e.sessions.Refresh(ctx, key(record.KindSession), func(ctx context.Context) ([]record.Session, error) {
			return e.reader.Sessions(ctx, selectors)
		}))
		return nil
	})
	g.Go(func() error {
		fail(e.pins.Refresh(ctx, key(record.KindPin), func(ctx context.Context) ([]record.PinEvent, error) {
			return e.reader.Pins(ctx, selectors)
		}))
		return nil
	})
	g.Go(func() error {
		fail(e.follows.Refresh(ctx, key(record.KindFollow), func(ctx context.Context) ([]record.FollowEvent, error) {
			return e.reader.Follows(ctx, selectors)
		}))
		return nil
	})
	_ = g.Wait()

	players := record.Players(e.progress.Rows(), e.sessions.Rows(), e.follows.Rows())
	addresses := query.Map(players, record.Address.String)
	fail(e.accounts.Refresh(ctx, collection.NewKey(record.KindAccount, fingerprint.Of(addresses)),
		func(ctx context.Context) ([]record.Account, error) {
			if len(players) == 0 {
				return nil, nil
			}
			return e.reader.Accounts(ctx, players)
		}))

	for _, k := range e.Missing() {
		log.Debug("definition missing", "error", record.NewMissingDependencyError(record.KindTrophy, k))
	}

	pass.Took = time.Since(start)
	pass.Err = errors.Join(errs...)
	if pass.Err != nil {
		log.Warn("refresh finished with errors", "failed", len(errs), "took", pass.Took, "error", pass.Err)
	} else {
		log.Info("refresh finished", "projects", len(projects), "players", len(players), "took", pass.Took)
	}

	e.lastMu.Lock()
	e.last = pass
	e.lastMu.Unlock()
	return pass.Err
}

func (e *Engine) loadEditions(ctx context.Context) ([]record.Edition, error) {
	if e.hasRegistry {
		return slices.Clone(e.registry), nil
	}
	return e.reader.Editions(ctx)
}
