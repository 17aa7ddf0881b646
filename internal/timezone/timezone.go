// Package timezone translates between caller-local wall-clock timestamps and
// absolute instants. Events are stored in UTC; every response renders them in
// the timezone the request resolved to.
package timezone

import (
	"errors"
	"time"
)

// Default is used when neither the query parameter nor the header names a zone.
const Default = "UTC"

// Layout is the fixed wire format for timestamps: ISO-8601 with a numeric
// UTC offset, second precision.
const Layout = "2006-01-02T15:04:05-07:00"

// wallClockLayout parses input timestamps that carry no offset; they are
// interpreted as wall-clock time in the resolved zone.
const wallClockLayout = "2006-01-02T15:04:05"

var (
	// ErrUnknownTimezone is returned for identifiers not in the IANA database.
	ErrUnknownTimezone = errors.New("unknown timezone")
	// ErrInvalidTimestamp is returned for unparseable timestamp strings.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// Resolve picks the effective timezone identifier: query parameter first,
// then header, then Default. The identifier is not validated here; an
// invalid zone surfaces as ErrUnknownTimezone when first used.
func Resolve(queryParam, headerValue string) string {
	if queryParam != "" {
		return queryParam
	}
	if headerValue != "" {
		return headerValue
	}
	return Default
}

// ToUTC interprets s in the given zone and returns the absolute instant in
// UTC. Strings that already carry an offset (RFC 3339) are taken as-is and
// the zone only matters for offset-less wall-clock input.
func ToUTC(s, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, ErrUnknownTimezone
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(wallClockLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTimestamp
	}
	return t.UTC(), nil
}

// Format renders the instant in the given zone using Layout, with the
// offset in effect at that instant (daylight saving included).
func Format(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", ErrUnknownTimezone
	}
	return t.In(loc).Format(Layout), nil
}
