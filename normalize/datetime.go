package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognizedTime is returned when a value cannot be read as a point in time.
var ErrUnrecognizedTime = errors.New("unrecognized time format")

const (
	// RFC822 is the timestamp layout of RSS 2.0 dates.
	RFC822 = time.RFC1123
	// rfc822Numeric accepts the same layout with a numeric zone.
	rfc822Numeric = time.RFC1123Z
	atomLayout    = "2006-01-02T15:04:05"
)

// BrokenDown is a nine-field calendar time: the fields of a C struct tm with
// a 1-based month. Weekday, YearDay and IsDST are informational; the instant
// is derived from the date and clock fields in the converter's location.
type BrokenDown struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday int
	YearDay int
	IsDST   int
}

// BrokenDownFrom splits t into its nine fields.
func BrokenDownFrom(t time.Time) BrokenDown {
	dst := 0
	if t.IsDST() {
		dst = 1
	}
	return BrokenDown{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Weekday: (int(t.Weekday()) + 6) % 7,
		YearDay: t.YearDay(),
		IsDST:   dst,
	}
}

func (b BrokenDown) in(loc *time.Location) time.Time {
	return time.Date(b.Year, time.Month(b.Month), b.Day, b.Hour, b.Minute, b.Second, 0, loc)
}

// Time reads raw as a point in time and converts it into the converter's
// location. Type detection order: time value, nine-field structure, numeric
// epoch seconds, string (RFC822, RFC3339, then epoch seconds).
func (c Converter) Time(raw any) (time.Time, error) {
	loc := c.location()
	switch v := raw.(type) {
	case time.Time:
		return v.In(loc), nil
	case *time.Time:
		if v != nil {
			return v.In(loc), nil
		}
	case BrokenDown:
		return v.in(loc), nil
	case [9]int:
		return BrokenDown{Year: v[0], Month: v[1], Day: v[2], Hour: v[3], Minute: v[4], Second: v[5]}.in(loc), nil
	case string:
		return parseTimeString(v, loc)
	}
	if sec, ok := epochSeconds(raw); ok {
		return fromEpoch(sec).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrUnrecognizedTime, raw)
}

// FormatRSS2 renders raw as an RFC822 timestamp.
func (c Converter) FormatRSS2(raw any) (string, error) {
	t, err := c.Time(raw)
	if err != nil {
		return "", err
	}
	return t.Format(RFC822), nil
}

// FormatAtom renders raw as YYYY-MM-DDTHH:MM:SS followed by the ±HH:MM
// offset of the converter's location at that instant.
func (c Converter) FormatAtom(raw any) (string, error) {
	t, err := c.Time(raw)
	if err != nil {
		return "", err
	}
	_, offset := t.Zone()
	return t.Format(atomLayout) + TZOffset(offset), nil
}

// TZOffset formats an offset in seconds east of UTC as ±HH:MM.
func TZOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	minutes := seconds / 60
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}

// rfc822Zones are the named zones RFC 822 defines besides UT/GMT, in
// seconds east of UTC.
var rfc822Zones = map[string]int{
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
}

func parseTimeString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(RFC822, s, loc); err == nil {
		t, err = resolveZoneName(t, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", err, s)
		}
		return t.In(loc), nil
	}
	for _, layout := range []string{rfc822Numeric, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return fromEpoch(f).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, s)
}

// resolveZoneName fixes the offset of a time parsed from a zone abbreviation.
// The time package gives an abbreviation loc does not define a zero offset;
// such a time is re-read with the RFC 822 offset, or rejected.
func resolveZoneName(t time.Time, loc *time.Location) (time.Time, error) {
	name, offset := t.Zone()
	if offset != 0 {
		return t, nil
	}
	switch name {
	case "UTC", "GMT", "UT":
		return t, nil
	}
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	if n, off := local.Zone(); n == name && off == 0 {
		return t, nil
	}
	if off, ok := rfc822Zones[name]; ok {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, off)), nil
	}
	return time.Time{}, fmt.Errorf("%w: unknown zone %s", ErrUnrecognizedTime, name)
}

func epochSeconds(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func fromEpoch(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9))
}
