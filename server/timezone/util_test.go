package timezone

import (
	"testing"
	"time"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{
			name:    "UTC",
			tz:      "UTC",
			wantErr: false,
		},
		{
			name:    "empty string defaults to UTC",
			tz:      "",
			wantErr: false,
		},
		{
			name:    "Europe/Moscow",
			tz:      "Europe/Moscow",
			wantErr: false,
		},
		{
			name:    "Asia/Yekaterinburg",
			tz:      "Asia/Yekaterinburg",
			wantErr: false,
		},
		{
			name:    "invalid timezone",
			tz:      "Invalid/Timezone",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTimezone() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if loc == nil {
				t.Error("ParseTimezone() returned nil location")
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	if !IsValidTimezone("Europe/Moscow") {
		t.Error("IsValidTimezone(Europe/Moscow) = false")
	}
	if !IsValidTimezone("") {
		t.Error("IsValidTimezone(\"\") = false")
	}
	if IsValidTimezone("Mars/Olympus") {
		t.Error("IsValidTimezone(Mars/Olympus) = true")
	}
}

func TestFormatEventTime(t *testing.T) {
	loc := time.FixedZone("YEKT", 5*60*60)
	start := time.Date(2025, 9, 3, 14, 0, 0, 0, loc)
	end := start.Add(30 * time.Minute)

	tests := []struct {
		name   string
		start  time.Time
		end    time.Time
		allDay bool
		want   string
	}{
		{
			name:  "timed with end",
			start: start,
			end:   end,
			want:  "03.09.2025 14:00 - 14:30",
		},
		{
			name:  "timed without end",
			start: start,
			end:   time.Time{},
			want:  "03.09.2025 14:00",
		},
		{
			name:   "all-day",
			start:  time.Date(2025, 9, 3, 0, 0, 0, 0, loc),
			end:    time.Date(2025, 9, 4, 0, 0, 0, 0, loc),
			allDay: true,
			want:   "03.09.2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEventTime(tt.start, tt.end, tt.allDay, loc)
			if got != tt.want {
				t.Errorf("FormatEventTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	loc := time.FixedZone("YEKT", 5*60*60)
	moment := time.Date(2025, 9, 3, 14, 35, 12, 0, loc)

	start := StartOfDay(moment, loc)
	if start.Hour() != 0 || start.Minute() != 0 || start.Day() != 3 {
		t.Errorf("StartOfDay() = %v", start)
	}

	end := EndOfDay(moment, loc)
	if end.Hour() != 23 || end.Minute() != 59 || end.Day() != 3 {
		t.Errorf("EndOfDay() = %v", end)
	}
}
