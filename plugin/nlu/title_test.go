package nlu

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		text string
		span string
		want string
	}{
		{
			text: "Напомни завтра в 10:00 оплатить хостинг",
			span: "завтра в 10:00",
			want: "оплатить хостинг",
		},
		{
			text: "создай встречу с юристом в пятницу в 14:00",
			span: "в пятницу в 14:00",
			want: "встречу с юристом",
		},
		{
			text: "через 2 часа позвонить маме",
			span: "через 2 часа",
			want: "позвонить маме",
		},
		{
			// Time block survives outside the matched span; strip it anyway.
			text: "поставь напоминание в 1745 забрать посылку",
			span: "",
			want: "забрать посылку",
		},
		{
			text: "завтра поход в кино!",
			span: "завтра",
			want: "поход кино",
		},
		{
			// Nothing left once the span and command verbs are gone.
			text: "напомни завтра в 10:00",
			span: "завтра в 10:00",
			want: DefaultTitle,
		},
		{
			text: "напомни",
			span: "",
			want: DefaultTitle,
		},
		{
			// Punctuation is stripped, hyphens are kept.
			text: "напомни завтра созвон по веб-дизайну (важно)",
			span: "завтра",
			want: "созвон по веб-дизайну важно",
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ExtractTitle(tt.text, tt.span); got != tt.want {
				t.Errorf("ExtractTitle(%q, %q) = %q, want %q", tt.text, tt.span, got, tt.want)
			}
		})
	}
}
