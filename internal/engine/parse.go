package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-datetools/internal/config"
)

// rfc2822Layouts lists the accepted shapes of an RFC 2822 date-time, most
// common first. Named zones are rewritten to numeric offsets beforehand, so
// every layout ends in a numeric zone.
var rfc2822Layouts = []string{
	config.LayoutRFC2822,
	config.LayoutRFC2822NoWkd,
	config.LayoutRFC2822NoSec,
	config.LayoutRFC2822NoWkdSec,
}

// iso8601Layouts lists the accepted shapes of an ISO 8601 date-time.
// The fractional second is optional in every layout that carries one.
var iso8601Layouts = []string{
	config.LayoutISO8601,
	config.LayoutISO8601Offset4,
	config.LayoutISO8601Offset2,
	config.LayoutISO8601NoZone,
	config.LayoutISO8601Minutes,
	config.LayoutISO8601MinOff4,
	config.LayoutISO8601MinOff2,
	config.LayoutISO8601MinBare,
	config.LayoutISO8601DateOnly,
}

// obsoleteZones maps the named zones of RFC 2822 section 4.3 to their
// assigned numeric offsets.
var obsoleteZones = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"UTC": "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// ParseRFC2822 parses an RFC 2822 date string ("Tue, 26 Jan 2016 13:48:02 GMT")
// into an absolute instant. The day-of-week is optional, the day may be one or
// two digits, and the zone may be numeric or one of the named zones of RFC 2822
// section 4.3. Single-letter military zones are treated as +0000, as the RFC
// requires. Malformed input yields the zero time and an error.
func ParseRFC2822(value string) (time.Time, error) {
	s := normalizeRFC2822(value)
	for _, layout := range rfc2822Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrRFC2822Parse, value)
}

// normalizeRFC2822 collapses folding whitespace and rewrites a trailing named
// zone into its numeric offset so the layout list stays purely numeric.
func normalizeRFC2822(value string) string {
	s := strings.Join(strings.Fields(value), " ")

	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return s
	}
	zone := s[i+1:]

	if offset, ok := obsoleteZones[zone]; ok {
		return s[:i+1] + offset
	}

	// Single-letter military zones carry no usable offset information and are
	// equivalent to -0000 per RFC 2822 section 4.3.
	if len(zone) == 1 && zone[0] >= 'A' && zone[0] <= 'Z' {
		return s[:i+1] + "+0000"
	}

	return s
}

// ParseISO8601 parses an ISO 8601 extended-format date string
// ("2016-01-19T16:07:37+00:00") into an absolute instant. Accepted zone
// designators are "Z", "+HH:MM", "+HHMM" and "+HH"; a zone-less string is
// interpreted as UTC. A comma is accepted as the decimal separator of the
// fractional second. Malformed input yields the zero time and an error.
func ParseISO8601(value string) (time.Time, error) {
	s := strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrISO8601Parse, value)
}

// ParseAny parses value against the ISO 8601 grammar first, then RFC 2822.
// It reports which grammar matched via the config.Grammar* identifiers.
func ParseAny(value string) (time.Time, string, error) {
	if t, err := ParseISO8601(value); err == nil {
		return t, config.GrammarISO8601, nil
	}
	if t, err := ParseRFC2822(value); err == nil {
		return t, config.GrammarRFC2822, nil
	}
	return time.Time{}, "", fmt.Errorf("%s: %q", config.ErrAnyParse, value)
}

// FormatISO8601 renders t in UTC with millisecond precision. Feeding the
// result back into ParseISO8601 restores the same instant, truncated to the
// millisecond.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(config.LayoutISO8601Out)
}

// FormatRFC2822 renders t in UTC in RFC 2822 style with a numeric zone.
func FormatRFC2822(t time.Time) string {
	return t.UTC().Format(config.LayoutRFC2822Out)
}
