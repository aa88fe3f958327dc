package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vodgrep/internal/filter"
	"vodgrep/internal/twitch"
	"vodgrep/internal/ui"
)

var modes = []string{
	"channel: search chat on every stored broadcast of a channel",
	"vod: search chat on a single broadcast",
	"clips: search clip titles of a channel",
}

// interactiveRun is the default command: it prompts for what to search while
// the token exchange runs in the background.
func interactiveRun(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cmd.Help()
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	ctx := cmd.Context()
	pending := twitch.AuthenticateAsync(ctx, cfg.ClientID, cfg.ClientSecret, sessionOptions()...)

	mode, err := ui.Select("What would you like to search?", modes)
	if err != nil {
		return err
	}

	var target string
	switch mode {
	case 0, 2:
		target, err = ui.Input("Channel name", "e.g. twitch")
	case 1:
		target, err = ui.Input("VOD ID", "e.g. 335921245")
	}
	if err != nil {
		return err
	}
	if target == "" {
		return fmt.Errorf("nothing to search")
	}

	var videoID int64
	if mode == 1 {
		if videoID, err = parseVideoID(target); err != nil {
			return err
		}
	}

	expr := flagFilter
	if expr == "" {
		expr, err = ui.Input("Keywords to look for, as a regular expression (blank for everything)", "hello|world")
		if err != nil {
			return err
		}
	}
	f, err := filter.New(expr)
	if err != nil {
		return err
	}

	s, err := pending.Wait(ctx)
	if err != nil {
		return err
	}
	debugf("authenticated as client %s", s.ClientID())

	switch mode {
	case 0:
		return searchChannel(ctx, s, target, f)
	case 1:
		return searchVOD(ctx, s, videoID, f, false)
	default:
		return searchClips(ctx, s, target, f)
	}
}
