package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const googleAPIBase = "https://www.googleapis.com/calendar/v3"

const defaultHTTPTimeout = 30 * time.Second

// GoogleClient implements Service against the Google Calendar v3 REST API.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	calendarID string
	timezone   *time.Location
}

// GoogleOption configures the client.
type GoogleOption func(*GoogleClient)

// WithHTTPClient overrides the HTTP client, bypassing the token source.
// Used by tests.
func WithHTTPClient(client *http.Client) GoogleOption {
	return func(c *GoogleClient) {
		c.httpClient = client
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) GoogleOption {
	return func(c *GoogleClient) {
		c.baseURL = baseURL
	}
}

// NewGoogleClient creates a calendar client for one calendar. The token
// source handles OAuth refresh; events are interpreted in the given
// timezone.
func NewGoogleClient(ts oauth2.TokenSource, calendarID string, timezone *time.Location, opts ...GoogleOption) *GoogleClient {
	c := &GoogleClient{
		baseURL:    googleAPIBase,
		calendarID: calendarID,
		timezone:   timezone,
	}
	if ts != nil {
		c.httpClient = oauth2.NewClient(context.Background(), ts)
		c.httpClient.Timeout = defaultHTTPTimeout
	} else {
		c.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// googleEvent mirrors the wire shape of a Calendar v3 event, limited to
// the fields the assistant uses.
type googleEvent struct {
	ID        string           `json:"id,omitempty"`
	Status    string           `json:"status,omitempty"`
	Summary   string           `json:"summary,omitempty"`
	Start     googleDateTime   `json:"start,omitempty"`
	End       googleDateTime   `json:"end,omitempty"`
	Reminders *googleReminders `json:"reminders,omitempty"`
}

type googleReminders struct {
	UseDefault bool                     `json:"useDefault"`
	Overrides  []googleReminderOverride `json:"overrides,omitempty"`
}

type googleReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// googleDateTime carries either dateTime (timed) or date (all-day),
// never both.
type googleDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEventList struct {
	Items         []googleEvent `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
}

func (c *GoogleClient) eventsURL() string {
	return c.baseURL + "/calendars/" + url.PathEscape(c.calendarID) + "/events"
}

func (c *GoogleClient) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	var events []Event
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("timeMin", from.Format(time.RFC3339))
		q.Set("timeMax", to.Format(time.RFC3339))
		q.Set("singleEvents", "true")
		q.Set("orderBy", "startTime")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page googleEventList
		if err := c.doJSON(ctx, http.MethodGet, c.eventsURL()+"?"+q.Encode(), nil, &page); err != nil {
			return nil, errors.Wrap(err, "list events")
		}

		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			ev, err := c.decodeEvent(item)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *GoogleClient) CreateEvent(ctx context.Context, req CreateEventRequest) (Event, error) {
	body := googleEvent{
		Summary: req.Title,
		Start:   c.encodeDateTime(req.Start, req.AllDay),
		End:     c.encodeDateTime(req.End, req.AllDay),
	}
	if !req.AllDay && req.ReminderLead > 0 {
		body.Reminders = &googleReminders{
			Overrides: []googleReminderOverride{
				{Method: "popup", Minutes: int(req.ReminderLead / time.Minute)},
			},
		}
	}

	var created googleEvent
	if err := c.doJSON(ctx, http.MethodPost, c.eventsURL(), body, &created); err != nil {
		return Event{}, errors.Wrap(err, "create event")
	}
	return c.decodeEvent(created)
}

func (c *GoogleClient) MoveEvent(ctx context.Context, eventID string, newStart, newEnd time.Time) (Event, error) {
	body := googleEvent{
		Start: c.encodeDateTime(newStart, false),
		End:   c.encodeDateTime(newEnd, false),
	}

	var patched googleEvent
	endpoint := c.eventsURL() + "/" + url.PathEscape(eventID)
	if err := c.doJSON(ctx, http.MethodPatch, endpoint, body, &patched); err != nil {
		return Event{}, errors.Wrap(err, "move event")
	}
	return c.decodeEvent(patched)
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, eventID string) error {
	endpoint := c.eventsURL() + "/" + url.PathEscape(eventID)
	if err := c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Wrap(err, "delete event")
	}
	return nil
}

func (c *GoogleClient) encodeDateTime(t time.Time, allDay bool) googleDateTime {
	if allDay {
		return googleDateTime{Date: t.In(c.timezone).Format("2006-01-02")}
	}
	return googleDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.timezone.String(),
	}
}

func (c *GoogleClient) decodeEvent(g googleEvent) (Event, error) {
	ev := Event{ID: g.ID, Title: g.Summary}

	switch {
	case g.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, g.Start.DateTime)
		if err != nil {
			return Event{}, errors.Wrapf(err, "event %s: bad start", g.ID)
		}
		ev.Start = start.In(c.timezone)
	case g.Start.Date != "":
		start, err := time.ParseInLocation("2006-01-02", g.Start.Date, c.timezone)
		if err != nil {
			return Event{}, errors.Wrapf(err, "event %s: bad start date", g.ID)
		}
		ev.Start = start
		ev.AllDay = true
	}

	switch {
	case g.End.DateTime != "":
		end, err := time.Parse(time.RFC3339, g.End.DateTime)
		if err != nil {
			return Event{}, errors.Wrapf(err, "event %s: bad end", g.ID)
		}
		ev.End = end.In(c.timezone)
	case g.End.Date != "":
		end, err := time.ParseInLocation("2006-01-02", g.End.Date, c.timezone)
		if err != nil {
			return Event{}, errors.Wrapf(err, "event %s: bad end date", g.ID)
		}
		ev.End = end
	}

	return ev, nil
}

// doJSON performs one API call. A nil out means the response body is
// discarded (delete returns 204 with no content).
func (c *GoogleClient) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("calendar API: status=%d body=%s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
