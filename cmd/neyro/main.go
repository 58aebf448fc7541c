package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/AntonV666/neyro-secretar/internal/profile"
	"github.com/AntonV666/neyro-secretar/plugin/nlu"
	"github.com/AntonV666/neyro-secretar/plugin/speech"
	"github.com/AntonV666/neyro-secretar/server/calendar"
	"github.com/AntonV666/neyro-secretar/server/httpapi"
	"github.com/AntonV666/neyro-secretar/server/reminder"
	"github.com/AntonV666/neyro-secretar/server/telegram"
	"github.com/AntonV666/neyro-secretar/server/timezone"
	"github.com/AntonV666/neyro-secretar/store"
	"github.com/AntonV666/neyro-secretar/store/db"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "neyro",
	Short: "Личный секретарь: календарь, напоминания и заметки через Telegram",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
			Version:     version,
		}
		p.FromEnv()
		if err := p.Validate(); err != nil {
			return err
		}

		setupLogger(p)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return run(ctx, p)
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("instance-url", "http://localhost:8080", "externally reachable URL of this instance")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("neyro")
	viper.AutomaticEnv()
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, p *profile.Profile) error {
	tz, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		return err
	}

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return err
	}
	st := store.New(dbDriver, p)
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	api := httpapi.NewServer(p, nil, tz)
	g.Go(func() error {
		return api.Start(ctx)
	})

	// The calendar client needs a persisted OAuth token. Until the owner
	// completes the consent flow, only the HTTP server runs.
	oauthCfg := httpapi.OAuthConfig(p)
	ts, err := calendar.FileTokenSource(ctx, oauthCfg, p.GoogleTokenFile)
	if err != nil {
		slog.Warn("google calendar token unavailable, running OAuth-only mode",
			"token_file", p.GoogleTokenFile,
			"consent_url", p.InstanceURL+"/oauth/google")
		slog.Info("complete the consent flow and restart the server")
		return g.Wait()
	}
	cal := calendar.NewGoogleClient(ts, p.CalendarID, tz)
	api.SetCalendar(cal)

	var sp speech.Service
	if p.IsSpeechEnabled() {
		sp, err = speech.NewService(speech.Config{
			APIKey:  p.OpenAIAPIKey,
			BaseURL: p.OpenAIBaseURL,
		})
		if err != nil {
			return err
		}
		slog.Info("speech recognition enabled")
	}

	tgClient := telegram.NewClient(p.TelegramToken)

	reminderStore := reminder.NewSQLStore(st)
	classifier := nlu.NewClassifier(tz)

	// The bot is both the message front-end and the reminder notifier;
	// the closure breaks the construction cycle between the two.
	var bot *telegram.Bot
	reminders := reminder.NewService(reminderStore, notifierFunc(func(ctx context.Context, message string) error {
		return bot.Notify(ctx, message)
	}), p.BotReminderLead, tz)
	handler := telegram.NewHandler(classifier, cal, reminders, st, tz, p.ReminderLead, p.BotReminderLead)
	bot = telegram.NewBot(tgClient, handler, p.TelegramOwnerID, sp)

	sweeper := reminder.NewScheduler(reminders)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	g.Go(func() error {
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	slog.Info("server started",
		"version", version,
		"mode", p.Mode,
		"addr", fmt.Sprintf("%s:%d", p.Addr, p.Port),
		"timezone", tz.String())

	return g.Wait()
}

// notifierFunc adapts a closure to the reminder.Notifier interface.
type notifierFunc func(ctx context.Context, message string) error

func (f notifierFunc) Notify(ctx context.Context, message string) error {
	return f(ctx, message)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}
