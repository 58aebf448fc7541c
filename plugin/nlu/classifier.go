package nlu

import (
	"strings"
	"time"

	"github.com/AntonV666/neyro-secretar/plugin/nlu/rutime"
)

// Keyword tables for intent routing. Matching is substring-based on the
// lowercased utterance, so the entries are stems rather than full forms.
var (
	createKeywords = []string{
		"напомн", "создай", "создать", "сделай напомина",
		"поставь", "запланируй", "запиши встречу",
	}
	listKeywords = []string{
		"что у меня", "расписан", "покажи план", "какие планы", "план на",
	}
	moveKeywords = []string{
		"перенеси", "перенос", "перенести", "передвинь",
	}
	deleteKeywords = []string{
		"удали", "отмени", "убери встречу",
	}
	bareDayWords = []string{"сегодня", "завтра"}
)

// timedEventDuration is the default span of an event created without an
// explicit duration.
const timedEventDuration = 30 * time.Minute

// Classifier routes utterances to calendar intents. Classification is a
// pure function of the text and the supplied "now"; the classifier itself
// holds only the timezone-bound parser.
type Classifier struct {
	parser *rutime.Parser
}

// NewClassifier creates a classifier for the given timezone.
func NewClassifier(timezone *time.Location) *Classifier {
	return &Classifier{parser: rutime.NewParser(timezone)}
}

// Classify inspects the utterance and assembles an Intent. It is total:
// malformed input degrades to KindUnknown or to a Create with a nil Start,
// both of which the caller answers with a clarification prompt.
//
// The decision order is a fixed tie-break policy: an explicit create
// keyword always wins, then list, move and delete keywords, and only then
// a bare extractable future time promotes the text to Create. Reordering
// these steps changes user-visible routing.
func (c *Classifier) Classify(text string, now time.Time) Intent {
	low := strings.ToLower(strings.TrimSpace(text))
	if low == "" {
		return Intent{Kind: KindUnknown}
	}

	switch {
	case containsAny(low, createKeywords):
		return c.buildCreate(text, now)
	case containsAny(low, listKeywords) || isBareDayWord(low):
		return c.buildList(low, now)
	case containsAny(low, moveKeywords):
		return c.buildMove(text, low, now)
	case containsAny(low, deleteKeywords):
		return Intent{Kind: KindDelete, Selector: low}
	}

	if _, _, ok := c.parser.ExtractFuture(text, now); ok {
		return c.buildCreate(text, now)
	}

	return Intent{Kind: KindUnknown}
}

// buildCreate extracts the event time and title. A create without an
// extractable time keeps nil Start so the caller can ask the user to
// rephrase.
func (c *Classifier) buildCreate(text string, now time.Time) Intent {
	start, span, ok := c.parser.ExtractFuture(text, now)
	if !ok {
		return Intent{Kind: KindCreate}
	}

	intent := Intent{
		Kind:  KindCreate,
		Title: ExtractTitle(text, span),
		Start: &start,
	}

	// A midnight-aligned time without an explicit clock in the matched
	// span is a date-only reference: the event spans the whole day. An
	// explicit "00:00" keeps the event timed.
	if isMidnight(start) && !rutime.HasExplicitClock(span) {
		intent.AllDay = true
		end := start.Add(24 * time.Hour)
		intent.End = &end
	} else {
		end := start.Add(timedEventDuration)
		intent.End = &end
	}
	return intent
}

// buildList computes the half-open day window being asked about.
func (c *Classifier) buildList(low string, now time.Time) Intent {
	var start, end time.Time

	switch {
	case strings.Contains(low, "сегодня"):
		start = startOfDay(now)
		end = start.AddDate(0, 0, 1)
	case strings.Contains(low, "завтра"):
		start = startOfDay(now).AddDate(0, 0, 1)
		end = start.AddDate(0, 0, 1)
	case strings.Contains(low, "недел"):
		start = now
		end = now.AddDate(0, 0, 7)
	default:
		start = now
		end = now.AddDate(0, 0, 1)
	}

	return Intent{Kind: KindList, RangeStart: &start, RangeEnd: &end}
}

// buildMove extracts the new time; the whole lowercased utterance becomes
// the selector, and actual target resolution is deferred to the event
// resolver.
func (c *Classifier) buildMove(text, low string, now time.Time) Intent {
	intent := Intent{Kind: KindMove, Selector: low}

	if start, _, ok := c.parser.ExtractFuture(text, now); ok {
		end := start.Add(timedEventDuration)
		intent.NewStart = &start
		intent.NewEnd = &end
	}
	return intent
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// isBareDayWord reports whether the utterance is just "сегодня" or
// "завтра", optionally with trailing punctuation.
func isBareDayWord(low string) bool {
	trimmed := strings.TrimRight(low, "?!. ")
	for _, w := range bareDayWords {
		if trimmed == w {
			return true
		}
	}
	return false
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
