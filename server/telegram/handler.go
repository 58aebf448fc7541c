package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/AntonV666/neyro-secretar/plugin/nlu"
	"github.com/AntonV666/neyro-secretar/server/calendar"
	"github.com/AntonV666/neyro-secretar/server/reminder"
	"github.com/AntonV666/neyro-secretar/server/timezone"
	"github.com/AntonV666/neyro-secretar/store"
)

// HelpText is sent whenever the assistant cannot make sense of a request.
const HelpText = "Не поняла запрос. Вот примеры того, как можно задавать напоминания:\n\n" +
	"• завтра в 10:00 напомни оплатить хостинг\n" +
	"• через 2 часа позвонить маме\n" +
	"• в пятницу в 14 встреча с Иваном на час\n" +
	"• создай встречу завтра в 15:30 с клиентом\n" +
	"• через 45 минут проверить сервер\n" +
	"• во вторник в 9 утра совещание на полтора часа\n" +
	"• через неделю в 18:00 тренировка\n" +
	"• в понедельник в 11:00 запись к врачу\n" +
	"• напомни через 10 минут выключить чайник\n" +
	"• в субботу в 19:00 поход в кино\n" +
	"• завтра в обед встреча с командой на 30 минут\n" +
	"• через 3 дня в 8 утра звонок директору\n" +
	"• 25 декабря в 20:00 поздравить родителей\n" +
	"• сегодня в 22:00 напомни проверить логи\n" +
	"• на следующей неделе во вторник в 14:00 встреча в офисе\n"

const (
	denialText      = "Извини, этот бот — личный помощник владельца."
	nothingPlanned  = "Ничего не запланировано."
	eventNotFound   = "Событие не найдено"
	noteSaved       = "Записала заметку."
	noNotes         = "Заметок пока нет."
	moveTimeMissing = "Не поняла, на какое время перенести."
	operationFailed = "Не получилось выполнить операцию, попробуй ещё раз."
	notesListLimit  = 20
)

// Handler turns one utterance into a calendar or note action and a reply.
type Handler struct {
	classifier *nlu.Classifier
	calendar   calendar.Service
	reminders  *reminder.Service
	store      *store.Store
	tz         *time.Location
	// calendarLead is the popup offset passed to the calendar backend,
	// botLead the offset of the bot's own reminder message.
	calendarLead time.Duration
	botLead      time.Duration
	now          func() time.Time
}

// NewHandler wires the handler.
func NewHandler(classifier *nlu.Classifier, cal calendar.Service, reminders *reminder.Service, st *store.Store, tz *time.Location, calendarLead, botLead time.Duration) *Handler {
	return &Handler{
		classifier:   classifier,
		calendar:     cal,
		reminders:    reminders,
		store:        st,
		tz:           tz,
		calendarLead: calendarLead,
		botLead:      botLead,
		now:          time.Now,
	}
}

// WithNow returns a copy pinned to a fixed clock. Used by tests.
func (h *Handler) WithNow(now func() time.Time) *Handler {
	cp := *h
	cp.now = now
	return &cp
}

// HandleText processes one utterance and returns the reply text.
func (h *Handler) HandleText(ctx context.Context, text string) (string, error) {
	if reply, handled, err := h.handleNoteCommand(ctx, text); handled {
		return reply, err
	}

	now := h.now().In(h.tz)
	intent := h.classifier.Classify(text, now)

	switch intent.Kind {
	case nlu.KindCreate:
		return h.handleCreate(ctx, intent)
	case nlu.KindList:
		return h.handleList(ctx, intent)
	case nlu.KindMove:
		return h.handleMove(ctx, intent, now)
	case nlu.KindDelete:
		return h.handleDelete(ctx, intent, now)
	default:
		return HelpText, nil
	}
}

func (h *Handler) handleCreate(ctx context.Context, intent nlu.Intent) (string, error) {
	if intent.Start == nil {
		return HelpText, nil
	}

	req := calendar.CreateEventRequest{
		Title:        intent.Title,
		Start:        *intent.Start,
		End:          *intent.End,
		AllDay:       intent.AllDay,
		ReminderLead: h.calendarLead,
	}
	ev, err := h.calendar.CreateEvent(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "create event")
	}

	if !intent.AllDay {
		if _, err := h.reminders.CreateForEvent(ctx, ev); err != nil {
			return "", errors.Wrap(err, "schedule reminder")
		}
	}

	when := timezone.FormatEventTime(ev.Start, time.Time{}, ev.AllDay, h.tz)
	if ev.AllDay {
		return fmt.Sprintf("Создала событие «%s» на %s.", ev.Title, when), nil
	}
	return fmt.Sprintf("Создала событие «%s» на %s. Напомню за %d мин.",
		ev.Title, when, int(h.botLead/time.Minute)), nil
}

func (h *Handler) handleList(ctx context.Context, intent nlu.Intent) (string, error) {
	events, err := h.calendar.ListEvents(ctx, *intent.RangeStart, *intent.RangeEnd)
	if err != nil {
		return "", errors.Wrap(err, "list events")
	}
	if len(events) == 0 {
		return nothingPlanned, nil
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		when := timezone.FormatEventTime(ev.Start, time.Time{}, ev.AllDay, h.tz)
		lines = append(lines, when+": "+ev.Title)
	}
	return strings.Join(lines, "\n"), nil
}

func (h *Handler) handleMove(ctx context.Context, intent nlu.Intent, now time.Time) (string, error) {
	if intent.NewStart == nil {
		return moveTimeMissing, nil
	}

	target, ok, err := h.resolveEvent(ctx, intent.Selector, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return eventNotFound, nil
	}

	ev, err := h.calendar.MoveEvent(ctx, target.ID, *intent.NewStart, *intent.NewEnd)
	if err != nil {
		return "", errors.Wrap(err, "move event")
	}

	// The old reminder points at the old time.
	if err := h.reminders.CancelByEvent(ctx, ev.ID); err != nil {
		return "", errors.Wrap(err, "cancel reminders")
	}
	if _, err := h.reminders.CreateForEvent(ctx, ev); err != nil {
		return "", errors.Wrap(err, "reschedule reminder")
	}

	when := timezone.FormatEventTime(ev.Start, time.Time{}, false, h.tz)
	return fmt.Sprintf("Перенесла «%s» на %s.", ev.Title, when), nil
}

func (h *Handler) handleDelete(ctx context.Context, intent nlu.Intent, now time.Time) (string, error) {
	target, ok, err := h.resolveEvent(ctx, intent.Selector, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return eventNotFound, nil
	}

	if err := h.calendar.DeleteEvent(ctx, target.ID); err != nil {
		return "", errors.Wrap(err, "delete event")
	}
	if err := h.reminders.CancelByEvent(ctx, target.ID); err != nil {
		return "", errors.Wrap(err, "cancel reminders")
	}
	return fmt.Sprintf("Удалила событие: %s", target.Title), nil
}

// resolveEvent fetches candidates and picks the one the selector refers
// to. Fetch, resolve, then mutate: the caller must not re-fetch between
// resolution and the mutating call.
func (h *Handler) resolveEvent(ctx context.Context, selector string, now time.Time) (nlu.Candidate, bool, error) {
	from, to := calendar.ResolveWindow(now)
	events, err := h.calendar.ListEvents(ctx, from, to)
	if err != nil {
		return nlu.Candidate{}, false, errors.Wrap(err, "list candidate events")
	}

	candidates := make([]nlu.Candidate, 0, len(events))
	for _, ev := range events {
		candidates = append(candidates, nlu.Candidate{ID: ev.ID, Title: ev.Title, Start: ev.Start})
	}

	target, ok := nlu.Resolve(selector, candidates, now)
	return target, ok, nil
}

// Note commands bypass intent classification: a dictated note must be
// stored verbatim, not interpreted.
func (h *Handler) handleNoteCommand(ctx context.Context, text string) (string, bool, error) {
	low := strings.ToLower(strings.TrimSpace(text))

	if low == "заметки" || low == "покажи заметки" || low == "мои заметки" {
		limit := notesListLimit
		notes, err := h.store.ListNotes(ctx, &store.FindNote{Limit: &limit})
		if err != nil {
			return "", true, errors.Wrap(err, "list notes")
		}
		if len(notes) == 0 {
			return noNotes, true, nil
		}
		lines := make([]string, 0, len(notes))
		for _, note := range notes {
			lines = append(lines, "• "+note.Content)
		}
		return strings.Join(lines, "\n"), true, nil
	}

	trimmed := strings.TrimSpace(text)
	for _, prefix := range []string{"запиши заметку", "заметка"} {
		if !strings.HasPrefix(low, prefix) {
			continue
		}
		// Cyrillic case pairs have equal UTF-8 widths, so the byte
		// offset into the original text is safe.
		content := strings.TrimSpace(trimmed[len(prefix):])
		content = strings.TrimLeft(content, ":,- ")
		if content == "" {
			return HelpText, true, nil
		}
		if _, err := h.store.CreateNote(ctx, &store.Note{UID: shortuuid.New(), Content: content}); err != nil {
			return "", true, errors.Wrap(err, "create note")
		}
		return noteSaved, true, nil
	}

	return "", false, nil
}
