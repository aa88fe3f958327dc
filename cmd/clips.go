package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"vodgrep/internal/filter"
	"vodgrep/internal/twitch"
)

var clipsCmd = &cobra.Command{
	Use:   "clips <name>...",
	Short: "Search the clip titles of a channel",
	Args:  cobra.MinimumNArgs(1),
	RunE:  clipsRun,
}

func clipsRun(cmd *cobra.Command, args []string) error {
	f, err := compileFilter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := authenticate(ctx)
	if err != nil {
		return err
	}

	return eachArg(args, "channels", func(name string) error {
		return searchClips(ctx, s, name, f)
	})
}

func searchClips(ctx context.Context, s *twitch.Session, name string, f filter.Filter) error {
	ch, err := s.ResolveChannel(ctx, name)
	if err != nil {
		return err
	}
	debugf("channel %s: id %d, searching clips back to %s", ch.Name, ch.ID, ch.CreatedAt.Format("2006-01-02"))

	n := 0
	for clip, err := range s.SearchClips(ctx, ch, f) {
		if err != nil {
			return err
		}
		if err := out.Clip(clip); err != nil {
			return err
		}
		n++
	}
	debugf("channel %s: %d matching clips", ch.Name, n)
	return nil
}
