package leave

import (
	"sort"
	"time"
)

// DateLayout is the calendar day-key format.
const DateLayout = "2006-01-02"

// MaxSpanDays bounds a single request to one leap year of calendar days.
const MaxSpanDays = 366

const secondsPerDay = 24 * 60 * 60

// DaySet is a set of distinct calendar day-keys.
type DaySet map[string]struct{}

// DaysByYear maps a calendar year to the day-keys falling in it.
type DaysByYear map[int]DaySet

// NormalizeDate drops the time-of-day component, keeping the calendar day.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD day-key.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DayKey formats t as a calendar day-key.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DayCount returns the inclusive number of calendar days in [start, end], or
// zero when end precedes start.
func DayCount(start, end time.Time) int {
	s, e := NormalizeDate(start), NormalizeDate(end)
	if e.Before(s) {
		return 0
	}
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1
}

// Overlaps reports whether two inclusive day ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !NormalizeDate(aStart).After(NormalizeDate(bEnd)) &&
		!NormalizeDate(bStart).After(NormalizeDate(aEnd))
}

// ValidateSpan checks that [start, end] is a well-formed range of at most
// MaxSpanDays days.
func ValidateSpan(start, end time.Time) error {
	count := DayCount(start, end)
	if count == 0 {
		return ErrInvalidRange
	}
	if count > MaxSpanDays {
		return ErrSpanTooLong
	}
	return nil
}

// DecomposeByYear splits the inclusive range [start, end] into per-year sets
// of day-keys. Every day of the range lands in exactly one year's set.
func DecomposeByYear(start, end time.Time) (DaysByYear, error) {
	s, e := NormalizeDate(start), NormalizeDate(end)
	if e.Before(s) {
		return nil, ErrInvalidRange
	}

	out := make(DaysByYear)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		set, ok := out[d.Year()]
		if !ok {
			set = make(DaySet)
			out[d.Year()] = set
		}
		set[DayKey(d)] = struct{}{}
	}
	return out, nil
}

// Union merges other into d. A day present in both is kept once.
func (d DaysByYear) Union(other DaysByYear) {
	for year, days := range other {
		set, ok := d[year]
		if !ok {
			set = make(DaySet, len(days))
			d[year] = set
		}
		for key := range days {
			set[key] = struct{}{}
		}
	}
}

// Count returns the number of distinct days recorded for year.
func (d DaysByYear) Count(year int) int {
	return len(d[year])
}

// Total returns the number of distinct days across all years.
func (d DaysByYear) Total() int {
	total := 0
	for _, days := range d {
		total += len(days)
	}
	return total
}

// Years returns the years present, ascending.
func (d DaysByYear) Years() []int {
	years := make([]int, 0, len(d))
	for year := range d {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
