package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vodgrep/internal/filter"
	"vodgrep/internal/httputil"
	"vodgrep/internal/twitch"
)

var vodCmd = &cobra.Command{
	Use:   "vod <id>...",
	Short: "Print the manifest and search the chat of broadcasts by video id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  vodRun,
}

func vodRun(cmd *cobra.Command, args []string) error {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := parseVideoID(arg)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	f, err := compileFilter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := authenticate(ctx)
	if err != nil {
		return err
	}

	heading := len(ids) > 1
	return eachArg(args, "videos", func(arg string) error {
		id, _ := parseVideoID(arg)
		return searchVOD(ctx, s, id, f, heading)
	})
}

// parseVideoID accepts a bare id or a twitch.tv/videos/<id> URL.
func parseVideoID(arg string) (int64, error) {
	arg = strings.TrimSpace(arg)
	if i := strings.LastIndex(arg, "/videos/"); i >= 0 {
		arg = arg[i+len("/videos/"):]
	}
	arg, _, _ = strings.Cut(arg, "?")

	if err := httputil.ValidateNumericID(arg); err != nil {
		return 0, fmt.Errorf("invalid video id: %w", err)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid video id %q", arg)
	}
	return id, nil
}

func searchVOD(ctx context.Context, s *twitch.Session, id int64, f filter.Filter, heading bool) error {
	b, err := s.ResolveBroadcast(ctx, id)
	if err != nil {
		return err
	}
	debugf("video %d: %s (%s)", b.ID, b.Title, b.Type)

	if heading {
		if err := out.Heading(b); err != nil {
			return err
		}
	}

	url, ok, err := s.ManifestURL(ctx, b)
	if err != nil {
		return err
	}
	if err := out.Manifest(b, url, ok); err != nil {
		return err
	}

	return printComments(ctx, s, id, f)
}
