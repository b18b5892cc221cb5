package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/arcade/internal/config"
	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/snapshot"
	"github.com/roach88/arcade/internal/source"
)

// errNoSource is returned when no data source flag or variable is set.
var errNoSource = errors.New("no data source: set --snapshot, --responses or --fixture")

// openReader returns the configured reader and a func releasing it.
func (o *RootOptions) openReader() (source.Reader, func(), error) {
	switch {
	case o.Snapshot != "":
		if _, err := os.Stat(o.Snapshot); err != nil {
			return nil, nil, fmt.Errorf("snapshot: %w", err)
		}
		st, err := snapshot.Open(o.Snapshot)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {
			if err := st.Close(); err != nil {
				o.logger.Error("error closing snapshot", "error", err)
			}
		}, nil
	default:
		r, err := o.openTransport()
		return r, func() {}, err
	}
}

// openTransport returns the non-snapshot reader: captured responses or
// a YAML fixture.
func (o *RootOptions) openTransport() (source.Reader, error) {
	switch {
	case o.Responses != "":
		info, err := os.Stat(o.Responses)
		if err != nil {
			return nil, fmt.Errorf("responses: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("responses: %s is not a directory", o.Responses)
		}
		return source.NewClient(source.DirTransport{Dir: o.Responses}, source.WithLogger(o.logger)), nil
	case o.Fixture != "":
		return source.LoadFixture(o.Fixture, o.logger)
	default:
		return nil, errNoSource
	}
}

func (o *RootOptions) registry() ([]record.Edition, bool, error) {
	if o.Registry == "" {
		return nil, false, nil
	}
	editions, err := config.LoadRegistry(o.Registry)
	if err != nil {
		return nil, false, err
	}
	return editions, true, nil
}

// engineOptions translates the settings into engine options.
func (o *RootOptions) engineOptions() ([]engine.Option, error) {
	opts := []engine.Option{
		engine.WithLogger(o.logger),
		engine.WithPinPolicy(config.Settings{PinLimit: o.PinLimit, PinFallback: o.PinFallback}.PinPolicy()),
		engine.WithDisplayCap(o.Cap),
	}
	editions, ok, err := o.registry()
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, engine.WithRegistry(editions))
	}
	return opts, nil
}

// openEngine builds an engine over the configured source and runs one
// refresh pass. A pass that fails on some resources still returns the
// engine: the failure is logged and the loaded resources are served.
func (o *RootOptions) openEngine(ctx context.Context, f *OutputFormatter, extra ...engine.Option) (*engine.Engine, func(), error) {
	reader, release, err := o.openReader()
	if errors.Is(err, errNoSource) {
		return nil, nil, f.fail(ExitCommandError, ErrCodeNoSource, err.Error(), nil)
	}
	if err != nil {
		return nil, nil, f.fail(ExitCommandError, ErrCodeNotFound, "failed to open data source", err)
	}

	opts, err := o.engineOptions()
	if err != nil {
		release()
		return nil, nil, f.fail(ExitCommandError, ErrCodeRegistry, "invalid registry", err)
	}
	eng := engine.New(reader, append(opts, extra...)...)
	closeAll := func() {
		eng.Close()
		release()
	}

	f.VerboseLog("refreshing")
	if err := eng.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, engine.ErrStopped) {
			closeAll()
			return nil, nil, WrapExitError(ExitFailure, "refresh interrupted", err)
		}
		o.logger.Warn("refresh incomplete, serving loaded resources", "error", err)
	}
	return eng, closeAll, nil
}

// resolvePlayer accepts a username or an address. Usernames are matched
// first so names that happen to be valid hex still resolve.
func resolvePlayer(eng *engine.Engine, s string) (record.Address, error) {
	want := record.NormalizeUsername(s)
	for _, e := range eng.Leaderboard(engine.LeaderboardRequest{Cap: -1}) {
		if e.Username != "" && e.Username == want {
			return e.Address, nil
		}
	}
	a, err := record.NormalizeAddress(s)
	if err != nil {
		return "", fmt.Errorf("unknown player %q", s)
	}
	return a, nil
}
