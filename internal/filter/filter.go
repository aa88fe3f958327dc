// Package filter decides which clip titles and comment bodies are worth
// emitting.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter reports whether a piece of text should be kept.
type Filter interface {
	Match(text string) bool
}

type matchAll struct{}

func (matchAll) Match(string) bool { return true }

// All keeps everything.
var All Filter = matchAll{}

// Pattern is a case-insensitive regular expression filter.
type Pattern struct {
	expr string
	re   *regexp.Regexp
}

// New compiles expr as a case-insensitive regular expression that matches
// anywhere in the text. Alternatives are written with |, e.g. "hello|world".
// A blank expression returns All.
func New(expr string) (Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return All, nil
	}
	re, err := regexp.Compile("(?i)(" + expr + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return &Pattern{expr: expr, re: re}, nil
}

// Match reports whether text contains a match.
func (p *Pattern) Match(text string) bool {
	return p.re.MatchString(text)
}

func (p *Pattern) String() string {
	return p.expr
}
