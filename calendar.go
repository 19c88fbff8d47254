package solbirthday

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateFormat is the ISO date layout accepted by the calendar.
const DateFormat = "2006-01-02"

// titleFormat matches "Mon January 02 2006".
const titleFormat = "Mon January 02 2006"

// ErrDateOutOfRange is returned for a date the calendar does not offer.
var ErrDateOutOfRange = errors.New("date out of range")

// Calendar restricts the dates which can be picked.
type Calendar struct {
	Min, Max time.Time
}

// DefaultCalendar spans 1850-01-01 to 2100-01-01.
func DefaultCalendar() Calendar {
	return Calendar{
		Min: time.Date(1850, 1, 1, 0, 0, 0, 0, time.UTC),
		Max: time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Parse reads an ISO date and checks it is within the calendar.
func (c Calendar) Parse(s string) (time.Time, error) {
	dt, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "could not understand date '%s'", s)
	}
	return dt, c.Check(dt)
}

// Check returns an error if the date is outside of the calendar.
func (c Calendar) Check(dt time.Time) error {
	if dt.Before(c.Min) || dt.After(c.Max) {
		return errors.Wrapf(ErrDateOutOfRange, "%s not in [%s, %s]", dt.Format(DateFormat), c.Min.Format(DateFormat), c.Max.Format(DateFormat))
	}
	return nil
}

// Today returns the current UTC date clamped to the calendar.
func (c Calendar) Today() time.Time {
	now := time.Now().UTC()
	dt := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dt.Before(c.Min) {
		return c.Min
	}
	if dt.After(c.Max) {
		return c.Max
	}
	return dt
}

// Title returns the caption shown on a plot for the date.
func Title(dt time.Time) string {
	return "The Solar System on:\n" + dt.Format(titleFormat)
}
