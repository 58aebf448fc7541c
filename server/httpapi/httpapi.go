// Package httpapi exposes the assistant's small HTTP surface: the Google
// OAuth consent flow and read-only feed exports of upcoming events.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/AntonV666/neyro-secretar/internal/profile"
	"github.com/AntonV666/neyro-secretar/server/calendar"
	ratelimit "github.com/AntonV666/neyro-secretar/server/middleware"
	"github.com/AntonV666/neyro-secretar/server/timezone"
)

// feedWindow is how far ahead the RSS and ICS exports look.
const feedWindow = 30 * 24 * time.Hour

const calendarScope = "https://www.googleapis.com/auth/calendar"

// OAuthConfig builds the Google OAuth config used both for the consent
// flow here and for refreshing the persisted token at startup.
func OAuthConfig(p *profile.Profile) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.GoogleClientID,
		ClientSecret: p.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  p.InstanceURL + "/oauth/google/callback",
		Scopes:       []string{calendarScope},
	}
}

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	profile    *profile.Profile
	calendar   calendar.Service
	oauthCfg   *oauth2.Config
	oauthState string
	tz         *time.Location
	now        func() time.Time
}

// NewServer builds the echo server and registers routes. The calendar
// service may be nil until OAuth completes; feed routes then answer 503.
func NewServer(p *profile.Profile, cal calendar.Service, tz *time.Location) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(ratelimit.NewRateLimiter(10, 20).Middleware())

	s := &Server{
		echo:       e,
		profile:    p,
		calendar:   cal,
		tz:         tz,
		now:        time.Now,
		oauthCfg:   OAuthConfig(p),
		oauthState: uuid.NewString(),
	}

	e.GET("/healthz", s.healthz)
	e.GET("/oauth/google", s.oauthStart)
	e.GET("/oauth/google/callback", s.oauthCallback)
	e.GET("/feed.rss", s.feedRSS)
	e.GET("/calendar.ics", s.feedICS)

	return s
}

// SetCalendar swaps in the calendar service once OAuth has produced a
// usable token.
func (s *Server) SetCalendar(cal calendar.Service) {
	s.calendar = cal
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutdownCtx)
	}()

	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) oauthStart(c echo.Context) error {
	url := s.oauthCfg.AuthCodeURL(s.oauthState, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return c.Redirect(http.StatusFound, url)
}

func (s *Server) oauthCallback(c echo.Context) error {
	if c.QueryParam("state") != s.oauthState {
		return echo.NewHTTPError(http.StatusBadRequest, "state mismatch")
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code")
	}

	token, err := s.oauthCfg.Exchange(c.Request().Context(), code)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "token exchange failed")
	}
	if err := calendar.SaveToken(s.profile.GoogleTokenFile, token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "token persist failed")
	}
	return c.String(http.StatusOK, "Авторизация завершена, можно закрыть вкладку.")
}

func (s *Server) upcomingEvents(ctx context.Context) ([]calendar.Event, error) {
	now := s.now().In(s.tz)
	return s.calendar.ListEvents(ctx, now, now.Add(feedWindow))
}

func (s *Server) feedRSS(c echo.Context) error {
	if s.calendar == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "calendar not connected")
	}

	events, err := s.upcomingEvents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "calendar unreachable")
	}

	feed := &feeds.Feed{
		Title:       "Предстоящие события",
		Link:        &feeds.Link{Href: s.profile.InstanceURL + "/feed.rss"},
		Description: "Календарь личного помощника",
		Created:     s.now(),
	}
	for _, ev := range events {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          ev.ID,
			Title:       ev.Title,
			Link:        &feeds.Link{Href: s.profile.InstanceURL + "/calendar.ics"},
			Description: timezone.FormatEventTime(ev.Start, ev.End, ev.AllDay, s.tz),
			Created:     ev.Start,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "feed render failed")
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (s *Server) feedICS(c echo.Context) error {
	if s.calendar == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "calendar not connected")
	}

	events, err := s.upcomingEvents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "calendar unreachable")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//neyro-secretar//RU")

	for _, ev := range events {
		item := cal.AddEvent(ev.ID)
		item.SetSummary(ev.Title)
		item.SetDtStampTime(s.now())
		if ev.AllDay {
			item.SetAllDayStartAt(ev.Start)
			item.SetAllDayEndAt(ev.End)
		} else {
			item.SetStartAt(ev.Start)
			item.SetEndAt(ev.End)
		}
	}

	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}
