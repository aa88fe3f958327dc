package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"vodgrep/internal/filter"
	"vodgrep/internal/twitch"
)

var channelCmd = &cobra.Command{
	Use:   "channel <name>...",
	Short: "Search the chat of every stored broadcast of a channel",
	Args:  cobra.MinimumNArgs(1),
	RunE:  channelRun,
}

func channelRun(cmd *cobra.Command, args []string) error {
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
		return searchChannel(ctx, s, name, f)
	})
}

// searchChannel prints the manifest and matching comments of each stored
// broadcast of a channel, in listing order.
func searchChannel(ctx context.Context, s *twitch.Session, name string, f filter.Filter) error {
	ch, err := s.ResolveChannel(ctx, name)
	if err != nil {
		return err
	}
	debugf("channel %s: id %d, created %s", ch.Name, ch.ID, ch.CreatedAt.Format("2006-01-02"))

	broadcasts, err := s.ListBroadcasts(ctx, ch)
	if err != nil {
		if len(broadcasts) == 0 {
			return err
		}
		log.Printf("some broadcasts of %s were skipped: %v", ch.Name, err)
	}
	if len(broadcasts) == 0 {
		log.Printf("%s has no stored broadcasts", ch.Name)
		return nil
	}
	debugf("channel %s: %d broadcasts", ch.Name, len(broadcasts))

	failed := 0
	for _, m := range s.ManifestURLs(ctx, broadcasts) {
		if err := out.Heading(m.Broadcast); err != nil {
			return err
		}
		if m.Err != nil {
			log.Printf("%v", m.Err)
		}
		if err := out.Manifest(m.Broadcast, m.URL, m.Available); err != nil {
			return err
		}

		if err := printComments(ctx, s, m.Broadcast.ID, f); err != nil {
			if fatal(err) {
				return err
			}
			log.Printf("%v", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("channel %s: comments of %d of %d broadcasts could not be fetched", ch.Name, failed, len(broadcasts))
	}
	return nil
}

func printComments(ctx context.Context, s *twitch.Session, id int64, f filter.Filter) error {
	n := 0
	for c, err := range s.Comments(ctx, id, f) {
		if err != nil {
			return err
		}
		if err := out.Comment(id, c); err != nil {
			return err
		}
		n++
	}
	debugf("video %d: %d matching comments", id, n)
	return nil
}
