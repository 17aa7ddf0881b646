package timezone

import (
	"errors"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	t.Run("query parameter wins", func(t *testing.T) {
		if got := Resolve("Asia/Kolkata", "Europe/Paris"); got != "Asia/Kolkata" {
			t.Fatalf("expected Asia/Kolkata, got %s", got)
		}
	})

	t.Run("header when query empty", func(t *testing.T) {
		if got := Resolve("", "Europe/Paris"); got != "Europe/Paris" {
			t.Fatalf("expected Europe/Paris, got %s", got)
		}
	})

	t.Run("defaults to UTC", func(t *testing.T) {
		if got := Resolve("", ""); got != "UTC" {
			t.Fatalf("expected UTC, got %s", got)
		}
	})
}

func TestToUTC(t *testing.T) {
	t.Run("wall clock in Kolkata", func(t *testing.T) {
		got, err := ToUTC("2025-09-08T10:00:00", "Asia/Kolkata")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 9, 8, 4, 30, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("offset in string overrides zone", func(t *testing.T) {
		got, err := ToUTC("2025-09-08T10:00:00+02:00", "Asia/Kolkata")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 9, 8, 8, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("unknown timezone", func(t *testing.T) {
		if _, err := ToUTC("2025-09-08T10:00:00", "Mars/Olympus"); !errors.Is(err, ErrUnknownTimezone) {
			t.Fatalf("expected ErrUnknownTimezone, got %v", err)
		}
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		if _, err := ToUTC("next tuesday", "UTC"); !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
		}
	})
}

func TestFormat(t *testing.T) {
	instant := time.Date(2025, 9, 8, 4, 30, 0, 0, time.UTC)

	t.Run("renders numeric offset", func(t *testing.T) {
		got, err := Format(instant, "Asia/Kolkata")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2025-09-08T10:00:00+05:30" {
			t.Fatalf("expected 2025-09-08T10:00:00+05:30, got %s", got)
		}
	})

	t.Run("UTC offset is +00:00", func(t *testing.T) {
		got, err := Format(instant, "UTC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2025-09-08T04:30:00+00:00" {
			t.Fatalf("expected 2025-09-08T04:30:00+00:00, got %s", got)
		}
	})

	t.Run("daylight saving offsets differ", func(t *testing.T) {
		summer := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
		winter := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		s, err := Format(summer, "America/New_York")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w, err := Format(winter, "America/New_York")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s != "2025-07-01T08:00:00-04:00" {
			t.Fatalf("expected EDT offset, got %s", s)
		}
		if w != "2025-01-01T07:00:00-05:00" {
			t.Fatalf("expected EST offset, got %s", w)
		}
	})

	t.Run("unknown timezone", func(t *testing.T) {
		if _, err := Format(instant, "Nowhere/Else"); !errors.Is(err, ErrUnknownTimezone) {
			t.Fatalf("expected ErrUnknownTimezone, got %v", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	zones := []string{"UTC", "Asia/Kolkata", "America/New_York", "Australia/Lord_Howe", "Pacific/Chatham"}
	instants := []time.Time{
		time.Date(2025, 9, 8, 4, 30, 0, 0, time.UTC),
		time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC),  // US spring-forward morning
		time.Date(2025, 11, 2, 6, 0, 0, 0, time.UTC), // US fall-back morning
		time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for _, tz := range zones {
		for _, instant := range instants {
			s, err := Format(instant, tz)
			if err != nil {
				t.Fatalf("format %v in %s: %v", instant, tz, err)
			}
			back, err := ToUTC(s, tz)
			if err != nil {
				t.Fatalf("parse %q in %s: %v", s, tz, err)
			}
			if !back.Equal(instant) {
				t.Fatalf("round trip %v via %s: got %v", instant, tz, back)
			}
		}
	}
}
