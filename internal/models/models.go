// Package models defines the input row types and value normalization for
// the AV7 gap analyzer.
//
// Two tables feed the analysis: the refueling record (receipt number,
// flight, refuel time) and the flight schedule (flight, scheduled departure
// time). Rows arrive as raw text pasted out of spreadsheets, so every field
// is normalized here before the analyzer touches it:
//   - flight identifiers are reduced to letters and digits, uppercased
//   - receipt ids are coerced from numeric text ("100234", "100234.0")
//   - times are parsed from HH:MM:SS (refuel log) or HHMM / HH:MM (STD)
//
// Parse failures are not errors: an invalid value simply excludes the row
// from the role that needed it, and the analyzer reports drop counts.
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ReceiptRow is a raw row from the refueling record table.
type ReceiptRow struct {
	AV7        string `json:"av7"`
	Flight     string `json:"flight"`
	RefuelTime string `json:"refuel_time"`
}

// ScheduleRow is a raw row from the flight schedule table.
type ScheduleRow struct {
	Flight string `json:"flight"`
	STD    string `json:"std"`
}

// String returns a string representation of the ReceiptRow
func (r ReceiptRow) String() string {
	return fmt.Sprintf("ReceiptRow{AV7: %s, Flight: %s, RefuelTime: %s}",
		r.AV7, r.Flight, r.RefuelTime)
}

// String returns a string representation of the ScheduleRow
func (s ScheduleRow) String() string {
	return fmt.Sprintf("ScheduleRow{Flight: %s, STD: %s}", s.Flight, s.STD)
}

// ClockTime is a time of day without a date. The zero value is invalid;
// parse failures yield invalid ClockTimes which downstream logic skips.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
	Valid  bool
}

// NewClockTime creates a valid ClockTime from hour, minute, second.
func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime{Hour: hour, Minute: minute, Second: second, Valid: true}
}

// Minutes returns the minute of day (0-1439), or -1 for an invalid time.
func (ct ClockTime) Minutes() int {
	if !ct.Valid {
		return -1
	}
	return ct.Hour*60 + ct.Minute
}

// Before reports whether ct is earlier in the day than other.
// Seconds participate so that receipts logged within the same minute
// still order correctly.
func (ct ClockTime) Before(other ClockTime) bool {
	if ct.Hour != other.Hour {
		return ct.Hour < other.Hour
	}
	if ct.Minute != other.Minute {
		return ct.Minute < other.Minute
	}
	return ct.Second < other.Second
}

// Format returns the time as "HH:MM", or an empty string when invalid.
func (ct ClockTime) Format() string {
	if !ct.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// String returns a string representation of the ClockTime
func (ct ClockTime) String() string {
	if !ct.Valid {
		return "invalid"
	}
	return fmt.Sprintf("%02d:%02d:%02d", ct.Hour, ct.Minute, ct.Second)
}

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// CleanFlightID normalizes a flight identifier for comparison: every
// character that is not a letter or digit is removed and the result is
// uppercased. Empty or missing input yields the empty string. Idempotent.
func CleanFlightID(raw string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(raw, ""))
}

// ParseReceiptID coerces receipt-id text to an integer. Spreadsheet pastes
// frequently render ids as "100234.0", so any integral-valued numeric text
// is accepted; non-numeric and non-integral values report false and the
// row is silently excluded from sequence analysis.
func ParseReceiptID(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if !d.IsInteger() {
		return 0, false
	}

	return d.IntPart(), true
}

// ParseScheduleTime parses a scheduled departure time. The STD column
// arrives in several shapes: a fractional numeric string ("1430.0"), a
// 3-4 digit "HHMM" string, or "HH:MM". Any trailing fractional part is
// stripped, the value is trimmed and left-padded with zeros to 4
// characters, then parsed as "HHMM" and, failing that, "HH:MM".
func ParseScheduleTime(raw string) ClockTime {
	s := raw
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ClockTime{}
	}
	for len(s) < 4 {
		s = "0" + s
	}

	if ct, ok := parseHHMM(s); ok {
		return ct
	}
	if ct, ok := parseColonTime(s, false); ok {
		return ct
	}
	return ClockTime{}
}

// ParseClockTime parses an "HH:MM:SS" refuel-log timestamp.
func ParseClockTime(raw string) ClockTime {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ClockTime{}
	}

	if ct, ok := parseColonTime(s, true); ok {
		return ct
	}
	return ClockTime{}
}

// parseHHMM parses a 4-digit "HHMM" string.
func parseHHMM(s string) (ClockTime, bool) {
	if len(s) != 4 {
		return ClockTime{}, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ClockTime{}, false
		}
	}

	hour, _ := strconv.Atoi(s[:2])
	minute, _ := strconv.Atoi(s[2:])
	if hour > 23 || minute > 59 {
		return ClockTime{}, false
	}

	return NewClockTime(hour, minute, 0), true
}

// parseColonTime parses "HH:MM" or, when withSeconds is set, "HH:MM:SS".
// Single-digit components are accepted, matching how the source data is
// usually typed ("9:30", "9:30:00").
func parseColonTime(s string, withSeconds bool) (ClockTime, bool) {
	parts := strings.Split(s, ":")
	want := 2
	if withSeconds {
		want = 3
	}
	if len(parts) != want {
		return ClockTime{}, false
	}

	vals := make([]int, len(parts))
	for i, p := range parts {
		if p == "" || len(p) > 2 {
			return ClockTime{}, false
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return ClockTime{}, false
		}
		vals[i] = v
	}

	hour, minute := vals[0], vals[1]
	second := 0
	if withSeconds {
		second = vals[2]
	}
	if hour > 23 || minute > 59 || second > 59 {
		return ClockTime{}, false
	}

	return NewClockTime(hour, minute, second), true
}
