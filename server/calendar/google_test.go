package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("YEKT", 5*60*60)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleClient(nil, "primary", testLoc, WithBaseURL(srv.URL))
}

func TestListEvents(t *testing.T) {
	from := time.Date(2025, 9, 3, 0, 0, 0, 0, testLoc)
	to := from.AddDate(0, 0, 1)

	var pages int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/calendars/primary/events", r.URL.Path)

		q := r.URL.Query()
		require.Equal(t, from.Format(time.RFC3339), q.Get("timeMin"))
		require.Equal(t, to.Format(time.RFC3339), q.Get("timeMax"))
		require.Equal(t, "true", q.Get("singleEvents"))
		require.Equal(t, "startTime", q.Get("orderBy"))

		pages++
		if q.Get("pageToken") == "" {
			json.NewEncoder(w).Encode(googleEventList{
				Items: []googleEvent{
					{
						ID:      "e1",
						Summary: "созвон",
						Start:   googleDateTime{DateTime: "2025-09-03T10:00:00+05:00"},
						End:     googleDateTime{DateTime: "2025-09-03T10:30:00+05:00"},
					},
					{ID: "gone", Status: "cancelled"},
				},
				NextPageToken: "p2",
			})
			return
		}
		require.Equal(t, "p2", q.Get("pageToken"))
		json.NewEncoder(w).Encode(googleEventList{
			Items: []googleEvent{
				{
					ID:      "e2",
					Summary: "день рождения",
					Start:   googleDateTime{Date: "2025-09-03"},
					End:     googleDateTime{Date: "2025-09-04"},
				},
			},
		})
	})

	events, err := client.ListEvents(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, 2, pages)
	require.Len(t, events, 2)

	require.Equal(t, "e1", events[0].ID)
	require.Equal(t, "созвон", events[0].Title)
	require.False(t, events[0].AllDay)
	require.True(t, events[0].Start.Equal(time.Date(2025, 9, 3, 10, 0, 0, 0, testLoc)))

	require.Equal(t, "e2", events[1].ID)
	require.True(t, events[1].AllDay)
	require.True(t, events[1].Start.Equal(time.Date(2025, 9, 3, 0, 0, 0, 0, testLoc)))
}

func TestCreateEvent_Timed(t *testing.T) {
	start := time.Date(2025, 9, 4, 10, 0, 0, 0, testLoc)
	end := start.Add(30 * time.Minute)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/calendars/primary/events", r.URL.Path)

		var body googleEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "оплатить хостинг", body.Summary)
		require.Equal(t, start.Format(time.RFC3339), body.Start.DateTime)
		require.Empty(t, body.Start.Date)
		require.Equal(t, end.Format(time.RFC3339), body.End.DateTime)
		require.NotNil(t, body.Reminders)
		require.False(t, body.Reminders.UseDefault)
		require.Equal(t, []googleReminderOverride{{Method: "popup", Minutes: 30}}, body.Reminders.Overrides)

		body.ID = "created-1"
		json.NewEncoder(w).Encode(body)
	})

	ev, err := client.CreateEvent(context.Background(), CreateEventRequest{
		Title:        "оплатить хостинг",
		Start:        start,
		End:          end,
		ReminderLead: 30 * time.Minute,
	})
	require.NoError(t, err)
	require.Equal(t, "created-1", ev.ID)
	require.True(t, ev.Start.Equal(start))
}

func TestCreateEvent_AllDay(t *testing.T) {
	start := time.Date(2025, 9, 4, 0, 0, 0, 0, testLoc)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body googleEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "2025-09-04", body.Start.Date)
		require.Empty(t, body.Start.DateTime)
		require.Equal(t, "2025-09-05", body.End.Date)
		require.Nil(t, body.Reminders)

		body.ID = "created-2"
		json.NewEncoder(w).Encode(body)
	})

	ev, err := client.CreateEvent(context.Background(), CreateEventRequest{
		Title:  "поход в кино",
		Start:  start,
		End:    start.AddDate(0, 0, 1),
		AllDay: true,
	})
	require.NoError(t, err)
	require.True(t, ev.AllDay)
}

func TestMoveEvent(t *testing.T) {
	newStart := time.Date(2025, 9, 4, 15, 0, 0, 0, testLoc)
	newEnd := newStart.Add(30 * time.Minute)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/calendars/primary/events/e1", r.URL.Path)

		var body googleEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, newStart.Format(time.RFC3339), body.Start.DateTime)

		json.NewEncoder(w).Encode(googleEvent{
			ID:      "e1",
			Summary: "созвон",
			Start:   googleDateTime{DateTime: newStart.Format(time.RFC3339)},
			End:     googleDateTime{DateTime: newEnd.Format(time.RFC3339)},
		})
	})

	ev, err := client.MoveEvent(context.Background(), "e1", newStart, newEnd)
	require.NoError(t, err)
	require.True(t, ev.Start.Equal(newStart))
}

func TestDeleteEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/calendars/primary/events/e1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteEvent(context.Background(), "e1"))
}

func TestDeleteEvent_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	err := client.DeleteEvent(context.Background(), "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=404")
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2025, 9, 3, 12, 0, 0, 0, testLoc)
	from, to := ResolveWindow(now)
	require.True(t, from.Equal(now.Add(-30*24*time.Hour)))
	require.True(t, to.Equal(now.Add(365*24*time.Hour)))
}
