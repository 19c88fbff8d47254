package solbirthday

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// J2000JD is the Julian date of the J2000 epoch (2000-01-01T12:00:00 TDB).
	J2000JD = 2451545.0
	// secondsPerDay is the number of SI seconds in a Julian day.
	secondsPerDay = 86400.0
	// ttMinusTAI is the constant offset between TT and TAI in seconds.
	ttMinusTAI = 32.184
)

// leapSecond is the TAI-UTC offset in effect from the given UTC date onwards.
type leapSecond struct {
	from  time.Time
	delta float64
}

// leapSeconds is the TAI-UTC table since the introduction of leap seconds.
// Dates before 1972 use the first entry.
var leapSeconds = []leapSecond{
	{time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1972, 7, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1974, 1, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(1976, 1, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(1977, 1, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(1979, 1, 1, 0, 0, 0, 0, time.UTC), 18},
	{time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 19},
	{time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 20},
	{time.Date(1982, 7, 1, 0, 0, 0, 0, time.UTC), 21},
	{time.Date(1983, 7, 1, 0, 0, 0, 0, time.UTC), 22},
	{time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), 23},
	{time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC), 24},
	{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 25},
	{time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 26},
	{time.Date(1992, 7, 1, 0, 0, 0, 0, time.UTC), 27},
	{time.Date(1993, 7, 1, 0, 0, 0, 0, time.UTC), 28},
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
}

// DeltaAT returns TAI-UTC in seconds at the provided UTC time.
func DeltaAT(dt time.Time) float64 {
	dt = dt.UTC()
	delta := leapSeconds[0].delta
	for _, ls := range leapSeconds {
		if dt.Before(ls.from) {
			break
		}
		delta = ls.delta
	}
	return delta
}

// DateToET converts a UTC date to ephemeris time, i.e. TDB seconds past J2000.
func DateToET(dt time.Time) float64 {
	dt = dt.UTC()
	utcSec := (julian.TimeToJD(dt) - J2000JD) * secondsPerDay
	tt := utcSec + DeltaAT(dt) + ttMinusTAI
	return tt + tdbMinusTT(tt)
}

// ETToJDE converts ephemeris time to a Julian ephemeris day.
func ETToJDE(et float64) float64 {
	return J2000JD + et/secondsPerDay
}

// ETToDate converts ephemeris time back to a UTC date, to the millisecond.
func ETToDate(et float64) time.Time {
	tt := et - tdbMinusTT(et)
	guess := julian.JDToTime(J2000JD + tt/secondsPerDay)
	utc := tt - DeltaAT(guess) - ttMinusTAI
	return julian.JDToTime(J2000JD + utc/secondsPerDay).Round(time.Millisecond)
}

// tdbMinusTT is the periodic TDB-TT term driven by the Earth's mean anomaly.
func tdbMinusTT(tt float64) float64 {
	M := 6.239996 + 1.99096871e-7*tt
	E := M + 0.01671*math.Sin(M)
	return 0.001657 * math.Sin(E)
}
