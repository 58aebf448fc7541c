package nlu

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := testNow

	ev := func(id, title string, start time.Time) Candidate {
		return Candidate{ID: id, Title: title, Start: start}
	}

	t.Run("earliest future wins", func(t *testing.T) {
		candidates := []Candidate{
			ev("a", "созвон", now.AddDate(0, 0, -3)),
			ev("b", "созвон", now.AddDate(0, 0, -1)),
			ev("c", "созвон", now.AddDate(0, 0, 2)),
			ev("d", "созвон", now.AddDate(0, 0, 5)),
		}
		got, ok := Resolve("перенеси созвон на пятницу", candidates, now)
		if !ok {
			t.Fatal("Resolve reported no match")
		}
		if got.ID != "c" {
			t.Errorf("picked %q, want %q (nearest future)", got.ID, "c")
		}
	})

	t.Run("selector names part of a longer title", func(t *testing.T) {
		candidates := []Candidate{
			ev("a", "оплатить хостинг и продлить домен", now.Add(24*time.Hour)),
			ev("b", "стоматолог", now.Add(48*time.Hour)),
		}
		got, ok := Resolve("оплатить хостинг", candidates, now)
		if !ok {
			t.Fatal("Resolve reported no match")
		}
		if got.ID != "a" {
			t.Errorf("picked %q, want %q", got.ID, "a")
		}
	})

	t.Run("start exactly at now counts as future", func(t *testing.T) {
		candidates := []Candidate{
			ev("at-now", "созвон", now),
			ev("later", "созвон", now.Add(48*time.Hour)),
		}
		got, ok := Resolve("удали созвон", candidates, now)
		if !ok {
			t.Fatal("Resolve reported no match")
		}
		if got.ID != "at-now" {
			t.Errorf("picked %q, want %q (start == now is future)", got.ID, "at-now")
		}
	})

	t.Run("latest past when no future left", func(t *testing.T) {
		candidates := []Candidate{
			ev("a", "созвон", now.AddDate(0, 0, -3)),
			ev("b", "созвон", now.AddDate(0, 0, -1)),
		}
		got, ok := Resolve("удали созвон", candidates, now)
		if !ok {
			t.Fatal("Resolve reported no match")
		}
		if got.ID != "b" {
			t.Errorf("picked %q, want %q (most recent past)", got.ID, "b")
		}
	})

	t.Run("case-insensitive title match", func(t *testing.T) {
		candidates := []Candidate{
			ev("a", "Встреча с Иваном", now.Add(2*time.Hour)),
			ev("b", "стоматолог", now.Add(3*time.Hour)),
		}
		got, ok := Resolve("перенеси встреча с иваном на завтра", candidates, now)
		if !ok {
			t.Fatal("Resolve reported no match")
		}
		if got.ID != "a" {
			t.Errorf("picked %q, want %q", got.ID, "a")
		}
	})

	t.Run("no match", func(t *testing.T) {
		candidates := []Candidate{
			ev("a", "стоматолог", now.Add(2*time.Hour)),
		}
		if _, ok := Resolve("удали созвон", candidates, now); ok {
			t.Error("Resolve matched an unrelated event")
		}
	})

	t.Run("empty candidate list", func(t *testing.T) {
		if _, ok := Resolve("удали созвон", nil, now); ok {
			t.Error("Resolve matched against no candidates")
		}
	})

	t.Run("blank titles are skipped", func(t *testing.T) {
		candidates := []Candidate{
			ev("a", "  ", now.Add(time.Hour)),
			ev("b", "созвон", now.Add(2*time.Hour)),
		}
		got, ok := Resolve("удали созвон", candidates, now)
		if !ok || got.ID != "b" {
			t.Errorf("got %v/%v, want event b", got.ID, ok)
		}
	})
}
