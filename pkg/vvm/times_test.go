package vvm

import "testing"

func TestTimestampRoundTrip(t *testing.T) {
	for _, s := range []string{
		"2024-03-15 09:30:00",
		"1970-01-01 00:00:01",
		"2024-03-15 09:30:00.25",
	} {
		ns := parseTimestamp(s)
		if isNilInt64(ns) {
			t.Fatalf("parseTimestamp(%q) gave nil", s)
		}
		if got := formatTimestamp(ns); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestParseTimestampDateOnly(t *testing.T) {
	ns := parseTimestamp("2024-03-15")
	if isNilInt64(ns) {
		t.Fatal("date-only timestamp gave nil")
	}
	if got := formatTimestamp(ns); got != "2024-03-15 00:00:00" {
		t.Errorf("got %q", got)
	}
}

func TestDateRoundTrip(t *testing.T) {
	ns := parseDate("1999-12-31")
	if got := formatDate(ns); got != "1999-12-31" {
		t.Errorf("got %q", got)
	}
	if !isNilInt64(parseDate("not-a-date")) {
		t.Error("bad date should be nil")
	}
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	for _, s := range []string{"09:30:00", "23:59:59", "00:00:01.5"} {
		ns := parseTimeOfDay(s)
		if isNilInt64(ns) {
			t.Fatalf("parseTimeOfDay(%q) gave nil", s)
		}
		if got := formatTimeOfDay(ns); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestTimedeltaText(t *testing.T) {
	if got := formatTimedelta(1500000000); got != "1500000000" {
		t.Errorf("got %q", got)
	}
	if got := parseTimedelta("250"); got != 250 {
		t.Errorf("got %d", got)
	}
}

func TestStringTimeValueNil(t *testing.T) {
	for _, k := range []ScalarKind{KTimestamp, KTimedelta, KTime, KDate} {
		if got := stringTimeValue(k, nilInt64); got != "" {
			t.Errorf("kind %d: nil rendered %q", k, got)
		}
		if got := reprTimeValue(k, nilInt64); got != "nil" {
			t.Errorf("kind %d: nil display %q", k, got)
		}
		if !isNilInt64(parseTimeValue(k, "")) {
			t.Errorf("kind %d: empty text should parse to nil", k)
		}
	}
}

func TestUnitFactors(t *testing.T) {
	if unitFactors["s"] != 1_000_000_000 {
		t.Errorf("s: %d", unitFactors["s"])
	}
	if unitFactors["d"] != 24*60*60*1_000_000_000 {
		t.Errorf("d: %d", unitFactors["d"])
	}
}
