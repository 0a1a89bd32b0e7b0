package timeutil

import (
	"time"
)

// All reservation rules run on Beijing wall-clock time regardless of where
// the server or the client happens to be.
const ZoneName = "Asia/Shanghai"

const (
	OrderWindowStart  = "08:00"
	OrderWindowEnd    = "11:30"
	CancelWindowStart = "08:00"
	CancelWindowEnd   = "11:30"
	PickupLockClock   = "12:50"
)

// MaxCupsPerUserPerDay is the hard per-student daily quota.
const MaxCupsPerUserPerDay = 2

var zone *time.Location

// Now returns the current instant. Tests swap it out for a fixed clock.
var Now = time.Now

func init() {
	var err error
	zone, err = time.LoadLocation(ZoneName)
	if err != nil {
		// 8 hours east, no DST. Only hit when the tz database is absent.
		zone = time.FixedZone("CST", 8*60*60)
	}
}

// Zone returns the fixed civil timezone every rule is evaluated in.
func Zone() *time.Location {
	return zone
}

// minuteOfDay parses "HH:MM" into minutes since midnight. Boundaries are
// configuration constants, so a malformed clock is a programming error and
// maps to 0.
func minuteOfDay(clock string) int {
	var hh, mm int
	if len(clock) != 5 || clock[2] != ':' {
		return 0
	}
	hh = int(clock[0]-'0')*10 + int(clock[1]-'0')
	mm = int(clock[3]-'0')*10 + int(clock[4]-'0')
	return hh*60 + mm
}

// WithinWindowAt reports whether the instant t falls inside [start, end) on
// the fixed-zone wall clock. The end boundary is exclusive: at 11:30 sharp
// ordering is already over.
func WithinWindowAt(t time.Time, start, end string) bool {
	local := t.In(zone)
	cur := local.Hour()*60 + local.Minute()
	return cur >= minuteOfDay(start) && cur < minuteOfDay(end)
}

// WithinWindow is WithinWindowAt for the current instant.
func WithinWindow(start, end string) bool {
	return WithinWindowAt(Now(), start, end)
}

// AtOrAfterAt reports whether the instant t has reached the given "HH:MM"
// boundary (inclusive) on the fixed-zone wall clock.
func AtOrAfterAt(t time.Time, clock string) bool {
	local := t.In(zone)
	cur := local.Hour()*60 + local.Minute()
	return cur >= minuteOfDay(clock)
}

// AtOrAfter is AtOrAfterAt for the current instant.
func AtOrAfter(clock string) bool {
	return AtOrAfterAt(Now(), clock)
}

// Day returns the civil date offset by the given number of days, formatted
// YYYY-MM-DD. Day(0) is today, Day(1) tomorrow.
func Day(offsetDays int) string {
	return Now().In(zone).AddDate(0, 0, offsetDays).Format("2006-01-02")
}

// DayOf returns the civil date of an arbitrary instant.
func DayOf(t time.Time) string {
	return t.In(zone).Format("2006-01-02")
}
