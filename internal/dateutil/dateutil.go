// Package dateutil renders a commit's unix-seconds/tz-offset pair the
// way commit.c's show_date callers do, except that the RELATIVE mode is
// a plain, non-localized "N units ago" rather than the full locale- and
// weekday-aware humanizer git itself uses — out of scope per this
// module's non-goals.
package dateutil

import (
	"fmt"
	"time"
)

// Mode selects a rendering for Format.
type Mode int

const (
	Normal Mode = iota
	RFC2822
	Relative
	ISO8601
)

// Format renders a commit date. unixSeconds and tz come straight off a
// parsed author/committer line: tz is the literal signed decimal the
// line carries (e.g. 530 for "+0530", -800 for "-0800"), not a minute
// count. now is used only by Relative mode.
func Format(unixSeconds int64, tz int, mode Mode, now time.Time) string {
	loc := time.FixedZone(tzString(tz), tzOffsetSeconds(tz))
	t := time.Unix(unixSeconds, 0).In(loc)

	switch mode {
	case RFC2822:
		return t.Format("Mon, 2 Jan 2006 15:04:05 -0700")
	case ISO8601:
		return t.Format("2006-01-02 15:04:05 ") + tzString(tz)
	case Relative:
		return relative(now.Sub(t))
	default:
		return t.Format("Mon Jan 2 15:04:05 2006 -0700")
	}
}

func tzOffsetSeconds(tz int) int {
	sign := 1
	if tz < 0 {
		sign = -1
		tz = -tz
	}
	hours, minutes := tz/100, tz%100
	return sign * (hours*3600 + minutes*60)
}

func tzString(tz int) string {
	sign, v := "+", tz
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%04d", sign, v)
}

func relative(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "less than a minute ago"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	case d < 365*24*time.Hour:
		return plural(int(d/(30*24*time.Hour)), "month")
	default:
		return plural(int(d/(365*24*time.Hour)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
