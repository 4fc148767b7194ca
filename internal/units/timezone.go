package units

import (
	"fmt"
	"time"
)

// SessionTimeLayout is how session start and end times are printed.
const SessionTimeLayout = "2006-01-02 15:04:05 MST"

// IsTimezoneValid reports whether tz names a location in the system tz
// database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// ConvertTime converts a stored UTC time to targetTimezone. An empty zone
// means UTC.
func ConvertTime(utcTime time.Time, targetTimezone string) (time.Time, error) {
	if targetTimezone == "" || targetTimezone == "UTC" {
		return utcTime.UTC(), nil
	}
	loc, err := time.LoadLocation(targetTimezone)
	if err != nil {
		return utcTime, fmt.Errorf("failed to load timezone %s: %w", targetTimezone, err)
	}
	return utcTime.In(loc), nil
}

// FormatSessionTime renders t in targetTimezone using SessionTimeLayout.
func FormatSessionTime(t time.Time, targetTimezone string) (string, error) {
	local, err := ConvertTime(t, targetTimezone)
	if err != nil {
		return "", err
	}
	return local.Format(SessionTimeLayout), nil
}
