package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/config"
	"github.com/roach88/arcade/internal/pin"
)

// RootOptions holds global flags for all commands. Unset flags fall back
// to the ARCADE_* environment.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Data sources. Exactly one of Snapshot, Responses or Fixture is read;
	// Snapshot wins, then Responses.
	Snapshot  string
	Responses string
	Fixture   string
	Registry  string

	Cap         int
	PinLimit    int
	PinFallback bool
	Every       time.Duration

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the arcade CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "arcade",
		Short: "Arcade player stats",
		Long: `Derive achievements, leaderboards and activity feeds from per-project
game records.

Records are read from a SQLite snapshot (--snapshot), a directory of captured
transport responses (--responses) or a YAML fixture (--fixture). The project
registry is a CUE file (--registry); without one every project the source
knows is read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.applySettings(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.Snapshot, "snapshot", "", "SQLite snapshot to read (env ARCADE_SNAPSHOT)")
	pf.StringVar(&opts.Responses, "responses", "", "directory of captured responses (env ARCADE_RESPONSES)")
	pf.StringVar(&opts.Fixture, "fixture", "", "YAML record fixture")
	pf.StringVar(&opts.Registry, "registry", "", "CUE project registry (env ARCADE_REGISTRY)")
	pf.IntVar(&opts.Cap, "cap", 10, "leaderboard rows shown, 0 for all (env ARCADE_DISPLAY_CAP)")
	pf.IntVar(&opts.PinLimit, "pin-limit", pin.DefaultLimit, "featured achievements per player (env ARCADE_PIN_LIMIT)")
	pf.BoolVar(&opts.PinFallback, "pin-fallback", true, "feature rarest completions when nothing is pinned (env ARCADE_PIN_FALLBACK)")

	cmd.AddCommand(NewLeaderboardCommand(opts))
	cmd.AddCommand(NewPlayerCommand(opts))
	cmd.AddCommand(NewFeedCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applySettings fills every flag the user did not set from the
// environment and configures logging.
func (o *RootOptions) applySettings(cmd *cobra.Command) error {
	s, err := config.LoadSettings()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}
	level, err := s.Level()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	flags := cmd.Flags()
	unset := func(name string) bool { return !flags.Changed(name) }
	if unset("snapshot") {
		o.Snapshot = s.Snapshot
	}
	if unset("responses") {
		o.Responses = s.Responses
	}
	if unset("registry") {
		o.Registry = s.Registry
	}
	if unset("cap") {
		o.Cap = s.DisplayCap
	}
	if unset("pin-limit") {
		o.PinLimit = s.PinLimit
	}
	if unset("pin-fallback") {
		o.PinFallback = s.PinFallback
	}
	if unset("every") && s.RefreshEvery > 0 {
		o.Every = s.RefreshEvery
	}

	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
