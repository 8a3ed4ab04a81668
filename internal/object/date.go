package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a git timestamp: seconds since the epoch and the author's UTC
// offset in minutes. NegativeZero records the "-0000" offset git uses when
// the zone is unknown, so it survives a round trip.
type Date struct {
	Seconds      int64
	Offset       int
	NegativeZero bool
}

// DateFromTime converts a time.Time, keeping its zone offset.
func DateFromTime(t time.Time) Date {
	_, off := t.Zone()
	return Date{Seconds: t.Unix(), Offset: off / 60}
}

// ParseDate parses "<seconds> <+|-HHMM>".
func ParseDate(s string) (Date, error) {
	secs, zone, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok {
		return Date{}, ErrMalformed.WithContext("reason", "date without zone").WithContext("date", s)
	}
	n, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return Date{}, ErrMalformed.WithContext("reason", "invalid timestamp").WithContext("date", s)
	}
	if len(zone) != 5 || (zone[0] != '+' && zone[0] != '-') {
		return Date{}, ErrMalformed.WithContext("reason", "invalid zone").WithContext("date", s)
	}
	hh, err1 := strconv.Atoi(zone[1:3])
	mm, err2 := strconv.Atoi(zone[3:5])
	if err1 != nil || err2 != nil || mm >= 60 {
		return Date{}, ErrMalformed.WithContext("reason", "invalid zone").WithContext("date", s)
	}
	d := Date{Seconds: n, Offset: hh*60 + mm}
	if zone[0] == '-' {
		d.Offset = -d.Offset
		d.NegativeZero = d.Offset == 0
	}
	return d, nil
}

// String encodes the date the way commits store it.
func (d Date) String() string {
	sign := '+'
	off := d.Offset
	if off < 0 || (off == 0 && d.NegativeZero) {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%d %c%02d%02d", d.Seconds, sign, off/60, off%60)
}

// Time returns the instant in the recorded zone.
func (d Date) Time() time.Time {
	return time.Unix(d.Seconds, 0).In(time.FixedZone("", d.Offset*60))
}
