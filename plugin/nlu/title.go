package nlu

import (
	"regexp"
	"strings"
)

// DefaultTitle is used when nothing remains of the utterance after the
// temporal span and command words are stripped. A create intent never
// carries an empty title.
const DefaultTitle = "Напоминание"

// Explicit time blocks removed from titles even when the matched span did
// not cover them ("в 15:15", "в 15.15", "в 1515", "в 15 15").
var timeBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`в\s*\d{1,2}:\d{2}`),
	regexp.MustCompile(`в\s*\d{1,2}\.\d{2}`),
	regexp.MustCompile(`в\s*\d{1,2}\s+\d{2}`),
	regexp.MustCompile(`в\s*\d{3,4}`),
}

// nonTitleCharsPattern strips punctuation, keeping letters, digits,
// whitespace and hyphens.
var nonTitleCharsPattern = regexp.MustCompile(`[^\p{L}\d\s\-]+`)

var weekdayWords = []string{
	"понедельник", "вторник", "среда", "среду", "четверг",
	"пятница", "пятницу", "суббота", "субботу", "воскресенье",
	"понед", "втор", "сред", "четв", "пятн", "субб", "воскр",
}

// titleStopWords are command verbs and temporal connectors that never
// belong to an event title.
var titleStopWords = func() map[string]struct{} {
	words := []string{
		// temporal connectors and duration units
		"сегодня", "завтра", "послезавтра", "после", "через",
		"минут", "минуты", "минуту", "час", "часа", "часов",
		"день", "дня", "дней", "неделю", "недели", "недель",
		"месяц", "месяца", "месяцев",
		"утра", "утром", "вечера", "вечером", "ночи", "ночью",
		"в", "к", "на", "во",
		// command verbs
		"напомни", "напомнить", "напоминание", "напоминалку",
		"создай", "создать", "сделай", "сделать",
		"поставь", "поставить", "запланируй",
	}
	words = append(words, weekdayWords...)

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// ExtractTitle produces a human-readable event title from the original
// utterance: the matched temporal span, explicit time blocks and the
// command/connector vocabulary are removed, whitespace is collapsed.
func ExtractTitle(text, span string) string {
	s := strings.ToLower(text)

	if span != "" {
		s = strings.Replace(s, strings.ToLower(span), " ", 1)
	}
	for _, rx := range timeBlockPatterns {
		s = rx.ReplaceAllString(s, " ")
	}

	var kept []string
	for _, token := range strings.Fields(s) {
		if _, stop := titleStopWords[token]; !stop {
			kept = append(kept, token)
		}
	}

	s = strings.Join(kept, " ")
	s = nonTitleCharsPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	if s == "" {
		return DefaultTitle
	}
	return s
}
