package cli

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/record"
	"github.com/roach88/arcade/internal/snapshot"
	"github.com/roach88/arcade/internal/source"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Capture records into a SQLite snapshot",
		Long: `Read every record from --responses or --fixture and write it into the
SQLite snapshot at --snapshot, creating the file if needed. Rows already in
the snapshot are kept, so importing twice is harmless.

With --registry only the registry's projects are captured.

Example:
  arcade import --responses ./captured --registry registry.cue --snapshot arcade.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd)
		},
	}
	return cmd
}

func runImport(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Snapshot == "" {
		return f.fail(ExitCommandError, ErrCodeNoSource, "import needs --snapshot as its destination", nil)
	}

	reader, err := opts.openTransport()
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeNoSource, "failed to open import source", err)
	}
	editions, ok, err := opts.registry()
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeRegistry, "invalid registry", err)
	}
	if ok {
		reader = registryReader{Reader: reader, editions: editions}
	}

	st, err := snapshot.Open(opts.Snapshot)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeImportFailed, "failed to open snapshot", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			opts.logger.Error("error closing snapshot", "error", err)
		}
	}()

	f.VerboseLog("importing into %s", opts.Snapshot)
	stats, err := st.Import(cmd.Context(), reader)
	if err != nil {
		return f.fail(ExitFailure, ErrCodeImportFailed, "import failed", err)
	}
	opts.logger.Info("snapshot imported", "path", opts.Snapshot, "progress", stats.Progress, "sessions", stats.Sessions)

	if opts.Format == "json" {
		return f.Success(stats)
	}
	f.Printf("Imported into %s:\n", opts.Snapshot)
	f.Printf("  %d editions, %d trophies, %d progress records\n", stats.Editions, stats.Trophies, stats.Progress)
	f.Printf("  %d sessions, %d accounts, %d pins, %d follows\n", stats.Sessions, stats.Accounts, stats.Pins, stats.Follows)
	return nil
}

// registryReader answers Editions from a fixed registry.
type registryReader struct {
	source.Reader
	editions []record.Edition
}

func (r registryReader) Editions(ctx context.Context) ([]record.Edition, error) {
	return slices.Clone(r.editions), ctx.Err()
}
