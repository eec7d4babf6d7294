package vvm

import (
	"strconv"
	"strings"
	"time"
)

// Temporal values are stored as int64 nanosecond counts: timestamps
// and dates since the Unix epoch (UTC), times since midnight, and
// timedeltas as plain durations.

const (
	nsPerSecond = int64(time.Second)
	nsPerDay    = 24 * int64(time.Hour)
)

// unitFactors maps the unit_* suffixes to nanosecond multipliers.
var unitFactors = map[string]int64{
	"ns": 1,
	"us": int64(time.Microsecond),
	"ms": int64(time.Millisecond),
	"s":  nsPerSecond,
	"m":  int64(time.Minute),
	"h":  int64(time.Hour),
	"d":  nsPerDay,
}

var unitNames = []string{"ns", "us", "ms", "s", "m", "h", "d"}

func formatFraction(ns int64) string {
	if ns == 0 {
		return ""
	}
	frac := strings.TrimRight(strconv.FormatInt(ns, 10), "0")
	pad := 9 - len(strconv.FormatInt(ns, 10))
	return "." + strings.Repeat("0", pad) + frac
}

func formatTimestamp(x int64) string {
	t := time.Unix(x/nsPerSecond, x%nsPerSecond).UTC()
	return t.Format("2006-01-02 15:04:05") + formatFraction(x % nsPerSecond)
}

func formatDate(x int64) string {
	return time.Unix(x/nsPerSecond, 0).UTC().Format("2006-01-02")
}

func formatTimeOfDay(x int64) string {
	secs := x / nsPerSecond
	h, m, s := secs/3600, (secs/60)%60, secs%60
	return padTwo(h) + ":" + padTwo(m) + ":" + padTwo(s) + formatFraction(x%nsPerSecond)
}

func padTwo(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

func formatTimedelta(x int64) string {
	return strconv.FormatInt(x, 10)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseTimestamp(s string) int64 {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UnixNano()
		}
	}
	return nilInt64
}

func parseDate(s string) int64 {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nilInt64
	}
	return t.UnixNano()
}

func parseTimeOfDay(s string) int64 {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			h, m, sec := t.Clock()
			return int64(h)*int64(time.Hour) +
				int64(m)*int64(time.Minute) +
				int64(sec)*nsPerSecond + int64(t.Nanosecond())
		}
	}
	return nilInt64
}

func parseTimedelta(s string) int64 {
	return parseInt64(s)
}

// reprTimeValue renders display form for the int64-backed time kinds.
func reprTimeValue(k ScalarKind, x int64) string {
	if isNilInt64(x) {
		return "nil"
	}
	return stringTimeValue(k, x)
}

// stringTimeValue renders storage form for the int64-backed time kinds.
func stringTimeValue(k ScalarKind, x int64) string {
	if isNilInt64(x) {
		return ""
	}
	switch k {
	case KTimestamp:
		return formatTimestamp(x)
	case KTimedelta:
		return formatTimedelta(x)
	case KTime:
		return formatTimeOfDay(x)
	case KDate:
		return formatDate(x)
	}
	return strconv.FormatInt(x, 10)
}

// parseTimeValue inverts stringTimeValue; unparseable input maps to nil.
func parseTimeValue(k ScalarKind, s string) int64 {
	if strings.TrimSpace(s) == "" {
		return nilInt64
	}
	switch k {
	case KTimestamp:
		return parseTimestamp(s)
	case KTimedelta:
		return parseTimedelta(s)
	case KTime:
		return parseTimeOfDay(s)
	case KDate:
		return parseDate(s)
	}
	return parseInt64(s)
}
