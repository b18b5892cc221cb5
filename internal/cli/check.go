package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/config"
	"github.com/roach88/arcade/internal/engine"
)

// CheckResult holds the outcome of the check command.
type CheckResult struct {
	OK       bool          `json:"ok"`
	Editions int           `json:"editions,omitempty"`
	Status   engine.Status `json:"status"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the registry and load every resource once",
		Long: `Validate the CUE registry, then run one refresh pass against the data
source and report each resource: rows loaded, fingerprint and any error.
Achievements seen in progress without a definition are listed.

Exits 1 if any resource failed to load.

Example:
  arcade check --registry registry.cue --responses ./captured`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	var result CheckResult
	if opts.Registry != "" {
		editions, err := config.LoadRegistry(opts.Registry)
		if err != nil {
			return f.fail(ExitFailure, ErrCodeRegistry, "registry invalid", err)
		}
		result.Editions = len(editions)
		f.VerboseLog("registry ok: %d editions", len(editions))
	}

	eng, closeEngine, err := opts.openEngine(cmd.Context(), f)
	if err != nil {
		return err
	}
	defer closeEngine()

	// Status reports Missing only once the views have been computed.
	eng.Items(engine.ItemFilter{})
	result.Status = eng.Status()
	result.OK = result.Status.Pass.Err == nil

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		printCheck(f, result)
	}
	if !result.OK {
		return WrapExitError(ExitFailure, "check failed", result.Status.Pass.Err)
	}
	return nil
}

func printCheck(f *OutputFormatter, r CheckResult) {
	if r.Editions > 0 {
		f.Printf("registry: %d editions\n", r.Editions)
	}
	for _, s := range r.Status.Slots {
		mark := "✓"
		if s.Error != "" {
			mark = "✗"
		}
		f.Printf("%s %-9s %s  %d rows\n", mark, s.Name, s.Status, s.Rows)
		if s.Error != "" {
			f.Printf("    %s\n", s.Error)
		}
	}
	for _, k := range r.Status.Missing {
		f.Printf("! no definition for %s\n", k)
	}
}
