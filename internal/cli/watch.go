package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/leaderboard"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Project string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh on an interval and print the leaderboard when it changes",
		Long: `Run the refresh loop: re-read the data source every --every and print
the leaderboard whenever its rows change. Passes that load identical data
print nothing.

Example:
  arcade watch --responses ./captured --every 30s
  ARCADE_REFRESH_EVERY=1m arcade watch --snapshot arcade.db --project zkube`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "project to rank (default global)")
	cmd.Flags().DurationVar(&opts.Every, "every", 30*time.Second, "refresh interval (env ARCADE_REFRESH_EVERY)")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Every <= 0 {
		return f.fail(ExitCommandError, ErrCodeGeneric, "--every must be positive", nil)
	}

	reader, release, err := opts.openReader()
	if errors.Is(err, errNoSource) {
		return f.fail(ExitCommandError, ErrCodeNoSource, err.Error(), nil)
	}
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeNotFound, "failed to open data source", err)
	}
	defer release()

	engOpts, err := opts.engineOptions()
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeRegistry, "invalid registry", err)
	}
	eng := engine.New(reader, append(engOpts, engine.WithInterval(opts.Every))...)
	defer eng.Close()

	changed := make(chan struct{}, 1)
	sub, err := eng.OnInvalidate(engine.ViewLeaderboard, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return WrapExitError(ExitFailure, "subscribe", err)
	}
	defer sub.Cancel()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			opts.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()
	eng.RequestRefresh("startup")

	opts.logger.Info("watching", "every", opts.Every, "project", opts.Project)
	for {
		select {
		case <-changed:
			rows := eng.Leaderboard(engine.LeaderboardRequest{Project: opts.Project})
			result := LeaderboardResult{
				Project: opts.Project,
				Total:   len(eng.Leaderboard(engine.LeaderboardRequest{Project: opts.Project, Cap: -1})),
				Rows:    rows,
			}
			if result.Rows == nil {
				result.Rows = []leaderboard.Entry{}
			}
			if opts.Format == "json" {
				if err := f.Success(result); err != nil {
					return err
				}
				continue
			}
			printLeaderboard(f, result)
		case err := <-runErr:
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return WrapExitError(ExitFailure, "engine error", err)
			}
			opts.logger.Info("engine stopped gracefully")
			return nil
		}
	}
}
