package profile

import (
	"os"
	"testing"
	"time"
)

func clearEnvVars() {
	envVars := []string{
		"NEYRO_TIMEZONE",
		"NEYRO_TELEGRAM_TOKEN",
		"NEYRO_TELEGRAM_OWNER_ID",
		"NEYRO_CALENDAR_ID",
		"NEYRO_GOOGLE_CLIENT_ID",
		"NEYRO_GOOGLE_CLIENT_SECRET",
		"NEYRO_GOOGLE_TOKEN_FILE",
		"NEYRO_REMINDER_LEAD_MINUTES",
		"NEYRO_BOT_REMINDER_LEAD_MINUTES",
		"NEYRO_OPENAI_API_KEY",
		"NEYRO_OPENAI_BASE_URL",
		"NEYRO_SPEECH_ENABLED",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.Timezone != "Asia/Yekaterinburg" {
		t.Errorf("Timezone = %q, want Asia/Yekaterinburg", profile.Timezone)
	}
	if profile.CalendarID != "primary" {
		t.Errorf("CalendarID = %q, want primary", profile.CalendarID)
	}
	if profile.ReminderLead != 30*time.Minute {
		t.Errorf("ReminderLead = %v, want 30m", profile.ReminderLead)
	}
	if profile.BotReminderLead != 15*time.Minute {
		t.Errorf("BotReminderLead = %v, want 15m", profile.BotReminderLead)
	}
	if profile.SpeechEnabled {
		t.Error("SpeechEnabled = true by default")
	}
}

func TestFromEnv(t *testing.T) {
	clearEnvVars()
	t.Cleanup(clearEnvVars)

	os.Setenv("NEYRO_TIMEZONE", "Europe/Moscow")
	os.Setenv("NEYRO_TELEGRAM_TOKEN", "123:abc")
	os.Setenv("NEYRO_TELEGRAM_OWNER_ID", "424242")
	os.Setenv("NEYRO_REMINDER_LEAD_MINUTES", "30")
	os.Setenv("NEYRO_SPEECH_ENABLED", "true")
	os.Setenv("NEYRO_OPENAI_API_KEY", "sk-test")

	profile := &Profile{}
	profile.FromEnv()

	if profile.Timezone != "Europe/Moscow" {
		t.Errorf("Timezone = %q", profile.Timezone)
	}
	if profile.TelegramToken != "123:abc" {
		t.Errorf("TelegramToken = %q", profile.TelegramToken)
	}
	if profile.TelegramOwnerID != 424242 {
		t.Errorf("TelegramOwnerID = %d", profile.TelegramOwnerID)
	}
	if profile.ReminderLead != 30*time.Minute {
		t.Errorf("ReminderLead = %v", profile.ReminderLead)
	}
	if !profile.IsSpeechEnabled() {
		t.Error("IsSpeechEnabled() = false with key and flag set")
	}
}

func TestFromEnvBadOwnerID(t *testing.T) {
	clearEnvVars()
	t.Cleanup(clearEnvVars)

	os.Setenv("NEYRO_TELEGRAM_OWNER_ID", "not-a-number")

	profile := &Profile{}
	profile.FromEnv()

	if profile.TelegramOwnerID != 0 {
		t.Errorf("TelegramOwnerID = %d, want 0 for malformed value", profile.TelegramOwnerID)
	}
}

func TestValidate(t *testing.T) {
	clearEnvVars()

	profile := &Profile{
		Mode:          "dev",
		Data:          t.TempDir(),
		Timezone:      "Europe/Moscow",
		TelegramToken: "123:abc",
	}
	profile.TelegramOwnerID = 424242

	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if profile.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", profile.Driver)
	}
	if profile.DSN == "" {
		t.Error("DSN not defaulted")
	}
	if profile.GoogleTokenFile == "" {
		t.Error("GoogleTokenFile not defaulted")
	}
}

func TestValidateRejectsMissingTelegram(t *testing.T) {
	profile := &Profile{
		Mode:     "dev",
		Data:     t.TempDir(),
		Timezone: "Europe/Moscow",
	}
	if err := profile.Validate(); err == nil {
		t.Error("Validate() accepted profile without telegram credentials")
	}
}

func TestValidateRejectsBadTimezone(t *testing.T) {
	profile := &Profile{
		Mode:            "dev",
		Data:            t.TempDir(),
		Timezone:        "Mars/Olympus",
		TelegramToken:   "123:abc",
		TelegramOwnerID: 1,
	}
	if err := profile.Validate(); err == nil {
		t.Error("Validate() accepted invalid timezone")
	}
}
