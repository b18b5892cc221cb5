package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/source"
	"github.com/roach88/arcade/internal/testutil"
)

// Run executes a scenario against a fresh engine and returns the result.
//
// The engine reads from an in-memory reader seeded with the scenario
// data. Each update is appended to the data and followed by another
// refresh pass. Assertions and properties are checked against the final
// state. An error is returned only when the scenario could not be run at
// all; failed checks are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reader := testutil.NewReader(scenario.Data)

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithTokenGenerator(testutil.NewSequenceTokens(scenario.Name)),
		engine.WithPinPolicy(scenario.Config.policy()),
	}
	if scenario.Config.Cap > 0 {
		opts = append(opts, engine.WithDisplayCap(scenario.Config.Cap))
	}
	eng := engine.New(reader, opts...)
	defer eng.Close()

	ctx := context.Background()
	result := NewResult()

	if err := eng.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("initial refresh: %w", err)
	}
	result.Passes++

	data := scenario.Data
	for i, update := range scenario.Updates {
		data = appendDataset(data, update)
		reader.Set(data)
		if err := eng.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("refresh after update %d: %w", i, err)
		}
		result.Passes++
	}

	normalized := source.NewFixture(data, logger).Dataset()
	n := newNames(normalized.Accounts)

	for _, msg := range EvaluateAssertions(eng, n, scenario.Assertions) {
		result.AddError(msg)
	}
	for _, msg := range CheckProperties(eng, normalized) {
		result.AddError(msg)
	}

	result.Snapshot = capture(scenario.Name, result.Passes, eng, n)
	return result, nil
}

// appendDataset returns base with every record of update appended.
// Events without a Seq are numbered by position in the combined log.
func appendDataset(base, update source.Dataset) source.Dataset {
	return source.Dataset{
		Editions: concat(base.Editions, update.Editions),
		Trophies: concat(base.Trophies, update.Trophies),
		Progress: concat(base.Progress, update.Progress),
		Sessions: concat(base.Sessions, update.Sessions),
		Accounts: concat(base.Accounts, update.Accounts),
		Pins:     concat(base.Pins, update.Pins),
		Follows:  concat(base.Follows, update.Follows),
	}
}

func concat[T any](a, b []T) []T {
	return append(slices.Clone(a), b...)
}
