package rutime

import (
	"fmt"
	"strings"
	"time"
)

// relDayOffsets maps relative day keywords to day offsets.
var relDayOffsets = map[string]int{
	"сегодня":      0,
	"завтра":       1,
	"послезавтра":  2,
	"вчера":        -1,
	"позавчера":    -2,
}

// weekdayIndex maps weekday names (nominative and accusative) to an offset
// from Monday.
var weekdayIndex = map[string]int{
	"понедельник": 0,
	"вторник":     1,
	"среда":       2,
	"среду":       2,
	"четверг":     3,
	"пятница":     4,
	"пятницу":     4,
	"суббота":     5,
	"субботу":     5,
	"воскресенье": 6,
	"воскресенья": 6,
}

// monthIndex maps genitive month names to their month number.
var monthIndex = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

// periodDefaultHours maps standalone period-of-day words to typical hours.
var periodDefaultHours = map[string]int{
	"утром":     9,
	"днем":      14,
	"днём":      14,
	"вечером":   19,
	"ночью":     23,
	"в обед":    13,
	"в полдень": 12,
}

// Parser parses Russian time expressions relative to an injected clock.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a parser for the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithTimezone returns a copy of the parser bound to tz.
func (p *Parser) WithTimezone(tz *time.Location) *Parser {
	return &Parser{timezone: tz, now: p.now}
}

// WithNow returns a copy of the parser using a fixed clock. Used by tests
// and by callers that must pin "now" for a whole request.
func (p *Parser) WithNow(now func() time.Time) *Parser {
	return &Parser{timezone: p.timezone, now: now}
}

// Parse parses a whole string as a single date/time expression. Text with
// non-temporal words around the expression is an error; use Search for
// embedded expressions.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty input")
	}

	now := p.now().In(p.timezone)

	if t, ok := p.tryStandardFormats(input, now); ok {
		return t, nil
	}

	matches := p.Search(input)
	if len(matches) == 1 && coversWhole(input, matches[0].Text) {
		return matches[0].Time, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", input)
}

// coversWhole reports whether span is the whole of input up to surrounding
// whitespace.
func coversWhole(input, span string) bool {
	return strings.TrimSpace(input) == strings.TrimSpace(span)
}

// tryStandardFormats attempts fixed date/time layouts.
func (p *Parser) tryStandardFormats(input string, now time.Time) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"02.01.2006 15:04",
		"02.01.2006",
		"15:04:05",
		"15:04",
	}

	for _, format := range formats {
		t, err := time.ParseInLocation(format, input, p.timezone)
		if err != nil {
			continue
		}
		// Time-only layouts resolve to today, biased to the future.
		if format == "15:04:05" || format == "15:04" {
			t = time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, p.timezone)
			if !t.After(now) {
				t = t.AddDate(0, 0, 1)
			}
		}
		return t, true
	}

	return time.Time{}, false
}

// midnight returns 00:00 of t's day in the parser timezone.
func (p *Parser) midnight(t time.Time) time.Time {
	t = t.In(p.timezone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.timezone)
}

// nearestWeekday returns the date of the nearest occurrence of the target
// weekday. When nextWeek is set the occurrence is taken from the following
// ISO week instead. hasClock selects whether "the same day" counts: a
// date-only match on today's weekday resolves a week ahead because its
// midnight is already past.
func (p *Parser) nearestWeekday(now time.Time, target int, nextWeek, hasClock bool) time.Time {
	current := int(now.Weekday())
	if current == 0 {
		current = 7
	}
	current-- // Monday = 0

	if nextWeek {
		daysUntilNextMonday := 7 - current
		return p.midnight(now).AddDate(0, 0, daysUntilNextMonday+target)
	}

	diff := (target - current + 7) % 7
	if diff == 0 && !hasClock {
		diff = 7
	}
	return p.midnight(now).AddDate(0, 0, diff)
}

// applyPeriod adjusts an hour by a trailing period word ("9 вечера" -> 21).
func applyPeriod(hour int, period string) int {
	switch period {
	case "вечера":
		if hour < 12 {
			return hour + 12
		}
	case "дня":
		if hour < 12 {
			return hour + 12
		}
	case "ночи":
		if hour == 12 {
			return 0
		}
	case "утра":
		// morning hours stay as given
	}
	return hour
}
