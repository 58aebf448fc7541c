// Package rutime parses Russian natural-language date and time expressions.
package rutime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled patterns for time token normalization.
var (
	// "15.15" / "9.30" style times
	hourDotMinutePattern = regexp.MustCompile(`\b(\d{1,2})\.(\d{2})\b`)
	// "15 15" / "9 30" style times
	hourSpaceMinutePattern = regexp.MustCompile(`\b(\d{1,2})\s+(\d{2})\b`)
	// maximal digit runs, checked for the bare "1515" form
	digitRunPattern = regexp.MustCompile(`\d+`)
)

// dateAdjacent reports whether b is a character that marks a date-like
// context around a digit run (separators in "01.09.2025", "2025-09-01").
func dateAdjacent(b byte) bool {
	switch b {
	case '.', ':', '/', '-':
		return true
	}
	return b >= '0' && b <= '9'
}

// Normalize rewrites informal time spellings into the canonical "HH:MM"
// form. Three rules run in order: dotted ("15.15"), spaced ("15 15") and
// bare digit runs ("1515"). The bare rule skips runs adjacent to digits or
// date separators so that "01.09.2025" keeps its year.
func Normalize(text string) string {
	s := text

	// "H.MM" -> "HH:MM". The hour is not range-checked here: the dotted
	// form is unambiguous enough that zero-padding is always applied.
	s = hourDotMinutePattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := hourDotMinutePattern.FindStringSubmatch(m)
		hh, _ := strconv.Atoi(parts[1])
		return fmt.Sprintf("%02d:%s", hh, parts[2])
	})

	// "H MM" -> "HH:MM" only for plausible hours.
	s = hourSpaceMinutePattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := hourSpaceMinutePattern.FindStringSubmatch(m)
		hh, _ := strconv.Atoi(parts[1])
		if hh >= 0 && hh <= 23 {
			return fmt.Sprintf("%02d:%s", hh, parts[2])
		}
		return m
	})

	return normalizeBareRuns(s)
}

// normalizeBareRuns rewrites standalone 3-4 digit runs ("1515", "0915")
// into "HH:MM". RE2 has no lookaround, so the adjacency guard of the form
// (?<![\d.:/\-])...(?![\d.:/\-]) is applied by inspecting neighbor bytes of
// each maximal digit run.
func normalizeBareRuns(s string) string {
	runs := digitRunPattern.FindAllStringIndex(s, -1)
	if len(runs) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	prev := 0
	for _, run := range runs {
		start, end := run[0], run[1]
		b.WriteString(s[prev:start])
		prev = end

		val := s[start:end]
		if len(val) != 3 && len(val) != 4 {
			b.WriteString(val)
			continue
		}
		if start > 0 && dateAdjacent(s[start-1]) {
			b.WriteString(val)
			continue
		}
		if end < len(s) && dateAdjacent(s[end]) {
			b.WriteString(val)
			continue
		}

		hh, _ := strconv.Atoi(val[:len(val)-2])
		if hh < 0 || hh > 23 {
			b.WriteString(val)
			continue
		}
		b.WriteString(fmt.Sprintf("%02d:%s", hh, val[len(val)-2:]))
	}
	b.WriteString(s[prev:])
	return b.String()
}
