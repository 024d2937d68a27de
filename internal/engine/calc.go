package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tartampluch/go-datetools/internal/config"
)

// Millisecond decomposition factors for span formatting.
const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute
)

// Dial geometry for the clock-hands calculation.
const (
	hoursOnDial = 12

	// The hour hand moves 30 degrees per hour, the minute hand 6 degrees per
	// minute while dragging the hour hand 0.5 degrees per minute along.
	// |30*h - 5.5*m| is the resulting separation.
	degreesPerHour   = 30.0
	minuteHandFactor = 5.5

	halfTurnDegrees = 180.0
	fullTurnDegrees = 360.0
)

// IsLeapYear reports whether year is a leap year in the Gregorian calendar:
// divisible by 4 and not by 100, unless divisible by 400.
// 1900 is not a leap year; 2000 is.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// TimeSpanToString renders the elapsed time between start and end as
// "HH:mm:ss.sss". The milliseconds field is derived from the total elapsed
// milliseconds, never read off the end timestamp, so sub-second carries
// across second/minute/hour boundaries are accounted for.
// A span of 100 hours or more widens the hour field as needed.
// If end precedes start an error is returned.
func TimeSpanToString(start, end time.Time) (string, error) {
	if end.Before(start) {
		return "", errors.New(config.ErrNegativeSpan)
	}

	elapsed := end.Sub(start).Milliseconds()

	hours := elapsed / millisPerHour
	minutes := (elapsed % millisPerHour) / millisPerMinute
	seconds := (elapsed % millisPerMinute) / millisPerSecond
	millis := elapsed % millisPerSecond

	return fmt.Sprintf(config.FormatTimeSpan, hours, minutes, seconds, millis), nil
}

// ClockHandsDegrees returns the non-reflex angle in degrees between the hour
// and minute hands of a 12-hour analog dial, read at the UTC hour and minute
// of t.
func ClockHandsDegrees(t time.Time) float64 {
	u := t.UTC()
	hour := float64(u.Hour() % hoursOnDial)
	minute := float64(u.Minute())

	deg := math.Abs(degreesPerHour*hour - minuteHandFactor*minute)
	if deg > halfTurnDegrees {
		deg = fullTurnDegrees - deg
	}
	return deg
}

// ClockHandsAngle is ClockHandsDegrees converted to radians. The conversion
// happens exactly once, on the final degree value, so no intermediate
// rounding is introduced. The result lies in [0, pi].
func ClockHandsAngle(t time.Time) float64 {
	return ClockHandsDegrees(t) * math.Pi / halfTurnDegrees
}
