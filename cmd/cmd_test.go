package cmd

import (
	"errors"
	"fmt"
	"testing"

	"vodgrep/internal/twitch"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{arg: "335921245", want: 335921245},
		{arg: " 42 ", want: 42},
		{arg: "https://www.twitch.tv/videos/335921245", want: 335921245},
		{arg: "https://www.twitch.tv/videos/335921245?t=1h2m3s", want: 335921245},
		{arg: "", wantErr: true},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "abc", wantErr: true},
		{arg: "99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseVideoID(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVideoID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseVideoID(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}

func TestEachArgKeepsGoing(t *testing.T) {
	var seen []string
	err := eachArg([]string{"a", "b", "c"}, "channels", func(arg string) error {
		seen = append(seen, arg)
		if arg == "b" {
			return &twitch.NotFoundError{Channel: arg}
		}
		return nil
	})

	if len(seen) != 3 {
		t.Errorf("visited %v, want all three", seen)
	}
	if err == nil || err.Error() != "1 of 3 channels failed" {
		t.Errorf("error = %v, want a failure count", err)
	}
}

func TestEachArgStopsOnAuthError(t *testing.T) {
	var seen []string
	err := eachArg([]string{"a", "b"}, "channels", func(arg string) error {
		seen = append(seen, arg)
		return fmt.Errorf("wrapped: %w", &twitch.AuthError{Err: errors.New("expired")})
	})

	var authErr *twitch.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("error = %v, want the auth error", err)
	}
	if len(seen) != 1 {
		t.Errorf("visited %v, want only the first", seen)
	}
}
