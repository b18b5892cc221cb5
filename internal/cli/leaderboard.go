package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/engine"
	"github.com/roach88/arcade/internal/leaderboard"
	"github.com/roach88/arcade/internal/record"
)

// LeaderboardOptions holds flags for the leaderboard command.
type LeaderboardOptions struct {
	*RootOptions
	Project   string
	Viewer    string
	Following bool
}

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LeaderboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show ranked players",
		Long: `Show players ranked by earnings, globally or for one project.

The board is capped at --cap rows. A --viewer outside the cap replaces the
last row so they always see their own standing. With --following the board
holds only the viewer and the players they follow, re-ranked.

Examples:
  arcade leaderboard --fixture league.yaml
  arcade leaderboard --snapshot arcade.db --project zkube --cap 20
  arcade leaderboard --responses ./captured --viewer alice --following`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "project to rank (default global)")
	cmd.Flags().StringVar(&opts.Viewer, "viewer", "", "player kept visible, by username or address")
	cmd.Flags().BoolVar(&opts.Following, "following", false, "only the viewer and who they follow")

	return cmd
}

// LeaderboardResult is the JSON payload of the leaderboard command.
type LeaderboardResult struct {
	Project string              `json:"project,omitempty"`
	Viewer  record.Address      `json:"viewer,omitempty"`
	Total   int                 `json:"total"`
	Rows    []leaderboard.Entry `json:"rows"`
}

func runLeaderboard(opts *LeaderboardOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	if opts.Following && opts.Viewer == "" {
		return f.fail(ExitCommandError, ErrCodeGeneric, "--following requires --viewer", nil)
	}

	eng, closeEngine, err := opts.openEngine(cmd.Context(), f)
	if err != nil {
		return err
	}
	defer closeEngine()

	var viewer record.Address
	if opts.Viewer != "" {
		if viewer, err = resolvePlayer(eng, opts.Viewer); err != nil {
			return f.fail(ExitCommandError, ErrCodeUnknownUser, err.Error(), nil)
		}
	}

	result := LeaderboardResult{
		Project: opts.Project,
		Viewer:  viewer,
		Total:   len(eng.Leaderboard(engine.LeaderboardRequest{Project: opts.Project, Cap: -1})),
		Rows: eng.Leaderboard(engine.LeaderboardRequest{
			Project:   opts.Project,
			Viewer:    viewer,
			Following: opts.Following,
		}),
	}
	if result.Rows == nil {
		result.Rows = []leaderboard.Entry{}
	}

	if opts.Format == "json" {
		return f.Success(result)
	}
	printLeaderboard(f, result)
	return nil
}

func printLeaderboard(f *OutputFormatter, r LeaderboardResult) {
	title := r.Project
	if title == leaderboard.Global {
		title = "global"
	}
	f.Printf("Leaderboard: %s (%d players)\n", title, r.Total)
	for _, e := range r.Rows {
		marker := " "
		if e.Address == r.Viewer {
			marker = ">"
		}
		f.Printf("%s%3d. %s  %d pts  %d completed\n", marker, e.Rank, displayName(e.Username, e.Address), e.Earnings, len(e.Completed))
	}
}

// displayName is the username, or the short address without one.
func displayName(username string, a record.Address) string {
	if username != "" {
		return username
	}
	return a.Short()
}
