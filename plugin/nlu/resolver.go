package nlu

import (
	"strings"
	"time"
)

// Candidate is a calendar event considered for a move or delete.
type Candidate struct {
	ID    string
	Title string
	Start time.Time
}

// Resolve picks the event a selector phrase refers to. Candidates whose
// title contains the selector as a case-insensitive substring are kept.
// Command utterances ("удали созвон с иваном") are longer than any title
// they name, so when that pass matches nothing the roles flip and titles
// embedded in the selector are accepted instead. Among the matches the
// earliest event starting at or after now wins; when every match is
// already in the past, the most recent one. Returns false when nothing
// matches.
func Resolve(selector string, candidates []Candidate, now time.Time) (Candidate, bool) {
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" {
		return Candidate{}, false
	}

	matched := match(candidates, func(title string) bool {
		return strings.Contains(title, sel)
	})
	if len(matched) == 0 {
		matched = match(candidates, func(title string) bool {
			return strings.Contains(sel, title)
		})
	}
	if len(matched) == 0 {
		return Candidate{}, false
	}

	best := matched[0]
	haveFuture := !best.Start.Before(now)
	for _, c := range matched[1:] {
		future := !c.Start.Before(now)
		switch {
		case future && !haveFuture:
			best, haveFuture = c, true
		case future && haveFuture && c.Start.Before(best.Start):
			best = c
		case !future && !haveFuture && c.Start.After(best.Start):
			best = c
		}
	}
	return best, true
}

func match(candidates []Candidate, accept func(title string) bool) []Candidate {
	var matched []Candidate
	for _, c := range candidates {
		title := strings.ToLower(strings.TrimSpace(c.Title))
		if title == "" {
			continue
		}
		if accept(title) {
			matched = append(matched, c)
		}
	}
	return matched
}
