package xtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Calendar approximations used by ParseDuration and FormatDuration.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

type unit struct {
	symbol string
	dur    time.Duration
}

// Units from largest to smallest, as written by FormatDuration.
var formatUnits = []unit{
	{"Y", Year},
	{"M", Month},
	{"w", Week},
	{"d", Day},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"µs", time.Microsecond},
	{"ns", time.Nanosecond},
}

var parseUnits = map[string]time.Duration{
	"Y":  Year,
	"y":  Year,
	"M":  Month,
	"w":  Week,
	"W":  Week,
	"d":  Day,
	"D":  Day,
	"h":  time.Hour,
	"m":  time.Minute,
	"s":  time.Second,
	"ms": time.Millisecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ns": time.Nanosecond,
}

// ParseDuration parses a duration string made of one or more decimal numbers,
// each followed by a unit, and an optional leading sign. For example: "10d",
// "-1.5w", "3Y4M5d" or "1h30m".
//
// Besides the units supported by time.ParseDuration, it accepts "d"="D" (day),
// "w"="W" (week), "M" (30 days) and "y"="Y" (365 days).
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid duration '%s'", orig)
	}

	var total float64
	for s != "" {
		i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
		if i == 0 {
			return 0, fmt.Errorf("invalid duration '%s': expected number at '%s'", orig, s)
		}
		if i < 0 {
			return 0, fmt.Errorf("invalid duration '%s': missing unit", orig)
		}
		num, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration '%s': bad number '%s'", orig, s[:i])
		}
		s = s[i:]

		j := strings.IndexFunc(s, func(r rune) bool { return (r >= '0' && r <= '9') || r == '.' })
		if j < 0 {
			j = len(s)
		}
		u, ok := parseUnits[s[:j]]
		if !ok {
			return 0, fmt.Errorf("invalid duration '%s': unknown unit '%s'", orig, s[:j])
		}
		s = s[j:]

		total += num * float64(u)
	}

	if total > math.MaxInt64 {
		return 0, errors.New("duration out of range")
	}

	dur := time.Duration(total)
	if neg {
		dur = -dur
	}

	return dur, nil
}

// FormatDuration formats a duration into a string with friendly units, as
// accepted by ParseDuration. For example: "10d", "-1w2d", "3Y4M5d".
//
// The duration is first rounded to round, and units smaller than round are
// omitted. A round value <= 0 keeps full precision.
func FormatDuration(d time.Duration, round time.Duration) string {
	if round > 0 {
		d = d.Round(round)
	}
	if d == 0 {
		return "0d"
	}

	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}

	for _, u := range formatUnits {
		if round > 0 && u.dur < round {
			break
		}
		if n := d / u.dur; n > 0 {
			fmt.Fprintf(&sb, "%d%s", n, u.symbol)
			d -= n * u.dur
		}
	}

	return sb.String()
}
