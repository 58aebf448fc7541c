// Package profile holds the runtime configuration of the assistant.
package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the HTTP server
	Addr string
	// Port is the binding port for the HTTP server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the assistant stores its own data
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the externally reachable URL of this instance,
	// used for OAuth redirects and feed links.
	InstanceURL string

	// Timezone is the IANA name the assistant interprets dates in.
	Timezone string

	// Telegram configuration
	TelegramToken   string // NEYRO_TELEGRAM_TOKEN
	TelegramOwnerID int64  // NEYRO_TELEGRAM_OWNER_ID

	// Calendar configuration
	CalendarID         string // NEYRO_CALENDAR_ID (default: primary)
	GoogleClientID     string // NEYRO_GOOGLE_CLIENT_ID
	GoogleClientSecret string // NEYRO_GOOGLE_CLIENT_SECRET
	GoogleTokenFile    string // NEYRO_GOOGLE_TOKEN_FILE (default: <data>/google_token.json)

	// Reminder lead times
	ReminderLead    time.Duration // NEYRO_REMINDER_LEAD_MINUTES (default: 30)
	BotReminderLead time.Duration // NEYRO_BOT_REMINDER_LEAD_MINUTES (default: 15)

	// Speech configuration
	OpenAIAPIKey  string // NEYRO_OPENAI_API_KEY
	OpenAIBaseURL string // NEYRO_OPENAI_BASE_URL
	SpeechEnabled bool   // NEYRO_SPEECH_ENABLED (default: false)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsSpeechEnabled reports whether voice messages can be processed.
func (p *Profile) IsSpeechEnabled() bool {
	return p.SpeechEnabled && p.OpenAIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		slog.Warn("invalid integer in environment", "key", key, "value", value)
		return defaultValue
	}
	return n
}

// FromEnv loads configuration from NEYRO_* environment variables.
func (p *Profile) FromEnv() {
	p.Timezone = getEnvOrDefault("NEYRO_TIMEZONE", "Asia/Yekaterinburg")

	p.TelegramToken = os.Getenv("NEYRO_TELEGRAM_TOKEN")
	p.TelegramOwnerID = getIntEnv("NEYRO_TELEGRAM_OWNER_ID", 0)

	p.CalendarID = getEnvOrDefault("NEYRO_CALENDAR_ID", "primary")
	p.GoogleClientID = os.Getenv("NEYRO_GOOGLE_CLIENT_ID")
	p.GoogleClientSecret = os.Getenv("NEYRO_GOOGLE_CLIENT_SECRET")
	p.GoogleTokenFile = os.Getenv("NEYRO_GOOGLE_TOKEN_FILE")

	p.ReminderLead = time.Duration(getIntEnv("NEYRO_REMINDER_LEAD_MINUTES", 30)) * time.Minute
	p.BotReminderLead = time.Duration(getIntEnv("NEYRO_BOT_REMINDER_LEAD_MINUTES", 15)) * time.Minute

	p.OpenAIAPIKey = os.Getenv("NEYRO_OPENAI_API_KEY")
	p.OpenAIBaseURL = os.Getenv("NEYRO_OPENAI_BASE_URL")
	p.SpeechEnabled = os.Getenv("NEYRO_SPEECH_ENABLED") == "true"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "neyro-secretar")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/neyro-secretar"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("neyro_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.GoogleTokenFile == "" {
		p.GoogleTokenFile = filepath.Join(dataDir, "google_token.json")
	}

	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}

	if p.TelegramToken == "" {
		return errors.New("NEYRO_TELEGRAM_TOKEN is required")
	}
	if p.TelegramOwnerID == 0 {
		return errors.New("NEYRO_TELEGRAM_OWNER_ID is required")
	}

	return nil
}
