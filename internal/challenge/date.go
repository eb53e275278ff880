package challenge

import (
	"time"
	_ "time/tzdata"

	"daily-challenge-service/internal/domain"
)

// DateLayout is the canonical challenge date form.
const DateLayout = "2006-01-02"

// DefaultResetZone is where the daily boundary falls for every participant.
const DefaultResetZone = "America/Los_Angeles"

// Date is a validated challenge calendar day.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate accepts only canonical YYYY-MM-DD strings naming a real day.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil || t.Format(DateLayout) != raw {
		return Date{}, domain.Invalid("date", domain.ErrInvalidDate)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// MustParseDate panics on malformed input. Intended for tests and constants.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Time returns midnight UTC of the day; only used for calendar arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	t := d.Time().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Number encodes the date as year*10000 + month*100 + day.
func (d Date) Number() int64 {
	return int64(d.Year)*10000 + int64(d.Month)*100 + int64(d.Day)
}

// Today returns the challenge date at now in the reset zone.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// LoadZone resolves the reset zone, falling back to UTC when the name is unknown.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultResetZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, err
	}
	return loc, nil
}
