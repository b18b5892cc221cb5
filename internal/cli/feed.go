package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/arcade/internal/discovery"
	"github.com/roach88/arcade/internal/engine"
)

// FeedOptions holds flags for the feed command.
type FeedOptions struct {
	*RootOptions
	Player           string
	Viewer           string
	AchievementsOnly bool
	Limit            int
}

// NewFeedCommand creates the feed command.
func NewFeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show recent play sessions and what they earned",
		Long: `Show play sessions newest first, each with the achievements completed
inside it.

Examples:
  arcade feed --fixture league.yaml --limit 20
  arcade feed --snapshot arcade.db --player alice
  arcade feed --snapshot arcade.db --viewer alice --achievements-only`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Player, "player", "", "only this player's sessions")
	cmd.Flags().StringVar(&opts.Viewer, "viewer", "", "only sessions of players the viewer follows")
	cmd.Flags().BoolVar(&opts.AchievementsOnly, "achievements-only", false, "drop sessions that completed nothing")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum sessions shown, 0 for all")

	return cmd
}

func runFeed(opts *FeedOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	eng, closeEngine, err := opts.openEngine(cmd.Context(), f)
	if err != nil {
		return err
	}
	defer closeEngine()

	req := engine.FeedRequest{AchievementsOnly: opts.AchievementsOnly, Limit: opts.Limit}
	if opts.Player != "" {
		if req.Player, err = resolvePlayer(eng, opts.Player); err != nil {
			return f.fail(ExitCommandError, ErrCodeUnknownUser, err.Error(), nil)
		}
	}
	if opts.Viewer != "" {
		if req.Viewer, err = resolvePlayer(eng, opts.Viewer); err != nil {
			return f.fail(ExitCommandError, ErrCodeUnknownUser, err.Error(), nil)
		}
		req.Following = true
	}

	feed := eng.Feed(req)
	if feed == nil {
		feed = []discovery.Activity{}
	}
	if opts.Format == "json" {
		return f.Success(feed)
	}

	if len(feed) == 0 {
		f.Printf("No sessions.\n")
		return nil
	}
	for _, a := range feed {
		where := a.Project
		if a.Edition != "" {
			where = a.Edition
		}
		f.Printf("%s played %s [%s-%s]", displayName(a.Username, a.Player), where,
			strconv.FormatInt(a.Start, 10), strconv.FormatInt(a.End, 10))
		if len(a.Achievements) > 0 {
			f.Printf("  +%d pts: %v", a.Earnings, a.Achievements)
		}
		f.Printf("\n")
	}
	return nil
}
