// Package units converts depth distances, stored in meters, for display.
package units

import "strings"

// Length unit names accepted on the command line.
const (
	Meters      = "m"
	Centimeters = "cm"
	Millimeters = "mm"
	Inches      = "in"
)

// ValidUnits lists the accepted length units.
var ValidUnits = []string{Meters, Centimeters, Millimeters, Inches}

// IsValid reports whether unit is one of ValidUnits. Names are case-sensitive.
func IsValid(unit string) bool {
	for _, u := range ValidUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns the valid units for error messages.
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ConvertLength converts meters to the target unit. Unknown units leave the
// value in meters.
func ConvertLength(meters float64, unit string) float64 {
	switch unit {
	case Centimeters:
		return meters * 100
	case Millimeters:
		return meters * 1000
	case Inches:
		return meters / 0.0254
	default:
		return meters
	}
}
