package units

import (
	"testing"
	"time"
)

func TestIsTimezoneValid(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		expected bool
	}{
		{"valid UTC", "UTC", true},
		{"valid US Eastern", "US/Eastern", true},
		{"invalid", "Invalid/Timezone", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimezoneValid(tt.timezone); got != tt.expected {
				t.Errorf("IsTimezoneValid(%s) = %v, want %v", tt.timezone, got, tt.expected)
			}
		})
	}
}

func TestConvertTime(t *testing.T) {
	utcTime := time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)

	for _, tz := range []string{"", "UTC"} {
		out, err := ConvertTime(utcTime, tz)
		if err != nil {
			t.Fatalf("ConvertTime(%q) error: %v", tz, err)
		}
		if !out.Equal(utcTime) || out.Location() != time.UTC {
			t.Fatalf("ConvertTime(%q) = %v, want %v", tz, out, utcTime)
		}
	}

	out, err := ConvertTime(utcTime, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("ConvertTime error: %v", err)
	}
	if out.Hour() != 21 || !out.Equal(utcTime) {
		t.Errorf("ConvertTime to Tokyo = %v, want 21:00 local", out)
	}

	if _, err := ConvertTime(utcTime, "Invalid/Timezone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestFormatSessionTime(t *testing.T) {
	at := time.Date(2025, 9, 13, 12, 30, 5, 0, time.UTC)
	got, err := FormatSessionTime(at, "")
	if err != nil {
		t.Fatal(err)
	}
	if want := "2025-09-13 12:30:05 UTC"; got != want {
		t.Errorf("FormatSessionTime = %q, want %q", got, want)
	}
	if _, err := FormatSessionTime(at, "Nowhere/City"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
