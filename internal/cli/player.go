package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/leaderboard"
)

// NewPlayerCommand creates the player command.
func NewPlayerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player <username|address>",
		Short: "Show one player's profile",
		Long: `Show a player's global and per-project standing, featured achievements
and follow counts.

Example:
  arcade player --fixture league.yaml alice
  arcade player --snapshot arcade.db 0x04a5b2...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayer(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runPlayer(opts *RootOptions, who string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	eng, closeEngine, err := opts.openEngine(cmd.Context(), f)
	if err != nil {
		return err
	}
	defer closeEngine()

	player, err := resolvePlayer(eng, who)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeUnknownUser, err.Error(), nil)
	}
	p := eng.Profile(player)
	if p.Projects == nil {
		p.Projects = []leaderboard.Entry{}
	}

	if opts.Format == "json" {
		return f.Success(p)
	}

	f.Printf("%s (%s)\n", displayName(p.Username, p.Address), p.Address)
	if p.Global.Rank > 0 {
		f.Printf("  global: #%d  %d pts  %d completed\n", p.Global.Rank, p.Global.Earnings, len(p.Global.Completed))
	} else {
		f.Printf("  global: unranked\n")
	}
	for _, e := range p.Projects {
		f.Printf("  %s: #%d  %d pts  %d completed\n", e.Project, e.Rank, e.Earnings, len(e.Completed))
	}
	for _, it := range p.Pinned {
		f.Printf("  featured: %s/%s  %d pts\n", it.Project, it.AchievementID, it.Earning)
	}
	f.Printf("  following %d, followers %d\n", p.Following, p.Followers)
	return nil
}
