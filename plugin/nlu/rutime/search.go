package rutime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Match is one embedded date/time expression found inside free text.
type Match struct {
	Text string
	Time time.Time
}

// fragmentKind names the grammatical role of a matched fragment.
type fragmentKind int

const (
	fragRelDay fragmentKind = iota
	fragWeekday
	fragNextWeek
	fragRelative
	fragMonthDay
	fragISODate
	fragClock
	fragBareHour
	fragPeriodWord
)

// fragment is a single matched span before merging.
type fragment struct {
	kind  fragmentKind
	start int
	end   int

	dayOffset int        // fragRelDay
	weekday   int        // fragWeekday
	dur       time.Duration // fragRelative (zero when months is used)
	months    int        // fragRelative, month units
	day       int        // fragMonthDay
	month     time.Month // fragMonthDay
	year      int        // fragMonthDay / fragISODate (0 when absent)
	isoMonth  time.Month // fragISODate
	isoDay    int        // fragISODate
	hour      int        // fragClock / fragBareHour / fragPeriodWord
	minute    int        // fragClock
}

// Fragment patterns, matched against the lowercased text. Longest
// alternatives come first so that "послезавтра" is not eaten by "завтра".
// RE2's \b is ASCII-only and never fires next to Cyrillic letters, so word
// boundaries are verified separately in collectFragments via runeBounded.
var (
	relDayFragPattern  = regexp.MustCompile(`послезавтра|позавчера|сегодня|завтра|вчера`)
	weekdayFragPattern = regexp.MustCompile(`(?:(?:в|во)\s+)?(понедельник|вторник|среду|среда|четверг|пятницу|пятница|субботу|суббота|воскресенье|воскресенья)`)
	nextWeekPattern    = regexp.MustCompile(`(?:на\s+)?следующ\S*\s+неделе`)
	relativePattern    = regexp.MustCompile(`через\s+(?:(\d+)\s+)?(полчаса|минут\S*|часа|часов|час|дня|дней|день|недел\S*|месяц\S*)`)
	monthDayPattern    = regexp.MustCompile(`(\d{1,2})\s+(января|февраля|марта|апреля|мая|июня|июля|августа|сентября|октября|ноября|декабря)(?:\s+(\d{4})(?:\s*года)?)?`)
	isoDatePattern     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	clockFragPattern   = regexp.MustCompile(`(?:(?:в|во|к)\s+)?(\d{1,2}):(\d{2})`)
	bareHourPattern    = regexp.MustCompile(`(?:в|к)\s+(\d{1,2})(?:\s+(утра|вечера|дня|ночи))?`)
	periodWordPattern  = regexp.MustCompile(`утром|вечером|ночью|днём|днем|в\s+обед|в\s+полдень`)

	// connector words allowed inside one merged expression
	connectorPattern = regexp.MustCompile(`^[\s,]*(?:в|во|на|к)?[\s,]*$`)

	// explicit numeric clock component, per the extractor preference rule
	explicitClockPattern = regexp.MustCompile(`\b\d{1,2}[:.]\d{2}\b|\b\d{3,4}\b`)
)

// HasExplicitClock reports whether span carries an explicit numeric time
// component ("10:00", "15.30" or a bare "1530" run).
func HasExplicitClock(span string) bool {
	return explicitClockPattern.MatchString(span)
}

// Search finds embedded date/time expressions in text. Adjacent date and
// time fragments separated only by whitespace or a connector preposition
// are merged into a single match. Date-only matches resolve to midnight.
func (p *Parser) Search(text string) []Match {
	frags := p.collectFragments(text)
	if len(frags) == 0 {
		return nil
	}

	now := p.now().In(p.timezone)

	var matches []Match
	for _, group := range mergeFragments(text, frags) {
		span := text[group[0].start : group[len(group)-1].end]
		if t, ok := p.resolveGroup(group, now); ok {
			matches = append(matches, Match{Text: span, Time: t})
		}
	}
	return matches
}

// runeBounded reports whether the span [start, end) is not glued to a
// letter or digit on either side. This is the Unicode-aware replacement
// for \b, which in RE2 is ASCII-only and never fires next to Cyrillic.
func runeBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// collectFragments runs every fragment pattern over the text, dropping
// later fragments that overlap earlier higher-priority ones.
func (p *Parser) collectFragments(text string) []fragment {
	lower := strings.ToLower(text)

	var frags []fragment
	add := func(f fragment) {
		if !runeBounded(lower, f.start, f.end) {
			return
		}
		for _, existing := range frags {
			if f.start < existing.end && existing.start < f.end {
				return
			}
		}
		frags = append(frags, f)
	}

	for _, loc := range relativePattern.FindAllStringSubmatchIndex(lower, -1) {
		f := fragment{kind: fragRelative, start: loc[0], end: loc[1]}
		n := 1
		if loc[2] >= 0 {
			n, _ = strconv.Atoi(lower[loc[2]:loc[3]])
		}
		unit := lower[loc[4]:loc[5]]
		switch {
		case unit == "полчаса":
			f.dur = 30 * time.Minute
		case strings.HasPrefix(unit, "минут"):
			f.dur = time.Duration(n) * time.Minute
		case strings.HasPrefix(unit, "час"):
			f.dur = time.Duration(n) * time.Hour
		case unit == "день" || unit == "дня" || unit == "дней":
			f.dur = time.Duration(n) * 24 * time.Hour
		case strings.HasPrefix(unit, "недел"):
			f.dur = time.Duration(n) * 7 * 24 * time.Hour
		case strings.HasPrefix(unit, "месяц"):
			f.months = n
		}
		add(f)
	}

	for _, loc := range monthDayPattern.FindAllStringSubmatchIndex(lower, -1) {
		f := fragment{kind: fragMonthDay, start: loc[0], end: loc[1]}
		f.day, _ = strconv.Atoi(lower[loc[2]:loc[3]])
		f.month = monthIndex[lower[loc[4]:loc[5]]]
		if loc[6] >= 0 {
			f.year, _ = strconv.Atoi(lower[loc[6]:loc[7]])
		}
		add(f)
	}

	for _, loc := range isoDatePattern.FindAllStringSubmatchIndex(lower, -1) {
		f := fragment{kind: fragISODate, start: loc[0], end: loc[1]}
		f.year, _ = strconv.Atoi(lower[loc[2]:loc[3]])
		m, _ := strconv.Atoi(lower[loc[4]:loc[5]])
		f.isoMonth = time.Month(m)
		f.isoDay, _ = strconv.Atoi(lower[loc[6]:loc[7]])
		add(f)
	}

	for _, loc := range clockFragPattern.FindAllStringSubmatchIndex(lower, -1) {
		f := fragment{kind: fragClock, start: loc[0], end: loc[1]}
		f.hour, _ = strconv.Atoi(lower[loc[2]:loc[3]])
		f.minute, _ = strconv.Atoi(lower[loc[4]:loc[5]])
		if f.hour > 23 || f.minute > 59 {
			continue
		}
		// A preposition glued to a preceding word is not a preposition;
		// retry from the digits alone.
		if !runeBounded(lower, f.start, f.end) {
			f.start = loc[2]
		}
		add(f)
	}

	for _, loc := range relDayFragPattern.FindAllStringIndex(lower, -1) {
		add(fragment{
			kind:      fragRelDay,
			start:     loc[0],
			end:       loc[1],
			dayOffset: relDayOffsets[lower[loc[0]:loc[1]]],
		})
	}

	for _, loc := range nextWeekPattern.FindAllStringIndex(lower, -1) {
		add(fragment{kind: fragNextWeek, start: loc[0], end: loc[1]})
	}

	for _, loc := range weekdayFragPattern.FindAllStringSubmatchIndex(lower, -1) {
		f := fragment{
			kind:    fragWeekday,
			start:   loc[0],
			end:     loc[1],
			weekday: weekdayIndex[lower[loc[2]:loc[3]]],
		}
		if !runeBounded(lower, f.start, f.end) {
			f.start = loc[2]
		}
		add(f)
	}

	for _, loc := range bareHourPattern.FindAllStringSubmatchIndex(lower, -1) {
		f := fragment{kind: fragBareHour, start: loc[0], end: loc[1]}
		f.hour, _ = strconv.Atoi(lower[loc[2]:loc[3]])
		if f.hour > 23 {
			continue
		}
		if loc[4] >= 0 {
			f.hour = applyPeriod(f.hour, lower[loc[4]:loc[5]])
		}
		add(f)
	}

	for _, loc := range periodWordPattern.FindAllStringIndex(lower, -1) {
		add(fragment{
			kind:  fragPeriodWord,
			start: loc[0],
			end:   loc[1],
			hour:  periodDefaultHours[normalizeSpaces(lower[loc[0]:loc[1]])],
		})
	}

	sortFragments(frags)
	return frags
}

// normalizeSpaces collapses whitespace runs to single spaces.
func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sortFragments orders fragments by their position in the text.
func sortFragments(frags []fragment) {
	for i := 1; i < len(frags); i++ {
		for j := i; j > 0 && frags[j].start < frags[j-1].start; j-- {
			frags[j], frags[j-1] = frags[j-1], frags[j]
		}
	}
}

// mergeFragments groups fragments whose gaps contain only whitespace and
// connector prepositions.
func mergeFragments(text string, frags []fragment) [][]fragment {
	var groups [][]fragment
	current := []fragment{frags[0]}

	for _, f := range frags[1:] {
		gap := text[current[len(current)-1].end:f.start]
		if connectorPattern.MatchString(gap) {
			current = append(current, f)
			continue
		}
		groups = append(groups, current)
		current = []fragment{f}
	}
	groups = append(groups, current)
	return groups
}

// resolveGroup combines the date and time fragments of one group into a
// concrete instant.
func (p *Parser) resolveGroup(group []fragment, now time.Time) (time.Time, bool) {
	var (
		rel       *fragment
		dateFrag  *fragment
		timeFrag  *fragment
		nextWeek  bool
	)

	for i := range group {
		f := &group[i]
		switch f.kind {
		case fragRelative:
			if rel == nil {
				rel = f
			}
		case fragNextWeek:
			nextWeek = true
		case fragRelDay, fragWeekday, fragMonthDay, fragISODate:
			if dateFrag == nil {
				dateFrag = f
			}
		case fragClock, fragBareHour, fragPeriodWord:
			if timeFrag == nil {
				timeFrag = f
			}
		}
	}

	hasClock := timeFrag != nil

	// Relative expressions anchor on "now" directly.
	if rel != nil {
		base := now.Add(rel.dur)
		if rel.months != 0 {
			base = now.AddDate(0, rel.months, 0)
		}
		if hasClock {
			base = time.Date(base.Year(), base.Month(), base.Day(),
				timeFrag.hour, timeFrag.minute, 0, 0, p.timezone)
		}
		return base, true
	}

	var day time.Time
	switch {
	case dateFrag == nil && nextWeek:
		day = p.midnight(now).AddDate(0, 0, 7)
	case dateFrag == nil:
		if !hasClock {
			return time.Time{}, false
		}
		// Time-only expressions resolve to today, biased to the future.
		t := time.Date(now.Year(), now.Month(), now.Day(),
			timeFrag.hour, timeFrag.minute, 0, 0, p.timezone)
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, true
	case dateFrag.kind == fragRelDay:
		day = p.midnight(now).AddDate(0, 0, dateFrag.dayOffset)
	case dateFrag.kind == fragWeekday:
		day = p.nearestWeekday(now, dateFrag.weekday, nextWeek, hasClock)
	case dateFrag.kind == fragMonthDay:
		year := dateFrag.year
		if year == 0 {
			year = now.Year()
		}
		day = time.Date(year, dateFrag.month, dateFrag.day, 0, 0, 0, 0, p.timezone)
		// Without an explicit year, resolve to the nearest future occurrence.
		if dateFrag.year == 0 && day.AddDate(0, 0, 1).Before(now) {
			day = day.AddDate(1, 0, 0)
		}
	case dateFrag.kind == fragISODate:
		day = time.Date(dateFrag.year, dateFrag.isoMonth, dateFrag.isoDay, 0, 0, 0, 0, p.timezone)
	}

	if !hasClock {
		return day, true
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		timeFrag.hour, timeFrag.minute, 0, 0, p.timezone), true
}

// immediacyGuard is the window below which an extracted instant is treated
// as "right now" and rejected, preventing instant reminder fires.
const immediacyGuard = 60 * time.Second

// ExtractFuture finds the most plausible future instant in free-form text.
// It normalizes informal time spellings, tries a whole-string parse first,
// then falls back to embedded search, preferring the first match with an
// explicit numeric clock component and otherwise taking the last match.
// Instants at or before now+60s are rejected.
func (p *Parser) ExtractFuture(text string, now time.Time) (time.Time, string, bool) {
	normalized := Normalize(text)
	pinned := p.WithNow(func() time.Time { return now })

	if t, err := pinned.Parse(normalized); err == nil {
		if t.After(now.Add(immediacyGuard)) {
			return t, strings.TrimSpace(normalized), true
		}
	}

	matches := pinned.Search(normalized)
	if len(matches) == 0 {
		return time.Time{}, "", false
	}

	chosen := matches[len(matches)-1]
	for _, m := range matches {
		if HasExplicitClock(m.Text) {
			chosen = m
			break
		}
	}

	if !chosen.Time.After(now.Add(immediacyGuard)) {
		return time.Time{}, "", false
	}
	return chosen.Time, chosen.Text, true
}
