package solbirthday

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	// DaysPerYear is the year length used to turn orbital periods into day spans.
	DaysPerYear = 365.26
	// defaultColor is used when a body is defined without a color.
	defaultColor = "#000000"
)

// BodyDefinition describes a body before its orbit is computed.
// Exactly one of Name and ID must be set.
type BodyDefinition struct {
	Name   string  // NAIF name
	ID     *int    // NAIF code
	Radius float64 // km
	Period float64 // Earth years
	Color  string  // hex color, defaults to black
	Label  string  // defaults to the NAIF name
}

// CelestialBody is a body of the solar system with its precomputed orbit.
type CelestialBody struct {
	ID     int
	Name   string
	Radius float64
	Period float64
	Color  string
	Label  string
	Orbit  OrbitSample
	eph    *Ephemeris
}

// String implements the Stringer interface.
func (c *CelestialBody) String() string {
	return fmt.Sprintf("%s (%s, %d)", c.Label, c.Name, c.ID)
}

// OrbitSample is one orbital period sampled at evenly spaced epochs, in AU.
// Epochs are kept as ephemeris time since a period may outlast a time.Duration.
type OrbitSample struct {
	Start     time.Time
	StartET   float64
	Step      float64 // seconds
	Positions [][]float64
}

// Len returns the number of samples.
func (o OrbitSample) Len() int {
	return len(o.Positions)
}

// ET returns the ephemeris time of the i-th sample.
func (o OrbitSample) ET(i int) float64 {
	return o.StartET + float64(i)*o.Step
}

// Epoch returns the UTC epoch of the i-th sample.
func (o OrbitSample) Epoch(i int) time.Time {
	return ETToDate(o.ET(i))
}

// Days returns the number of days spanned by the samples.
func (o OrbitSample) Days() float64 {
	if o.Len() == 0 {
		return 0
	}
	return o.Step * float64(o.Len()-1) / secondsPerDay
}

// Position is where a body is at a given epoch.
type Position struct {
	Epoch       time.Time
	R           []float64 // AU, relative to the solar system barycenter, HCI unless asked otherwise
	SunDistance float64   // AU
}

// Longitude returns the longitude of the position in its frame, in degrees in [0, 360).
func (p Position) Longitude() float64 {
	return Rad2deg(math.Atan2(p.R[1], p.R[0]))
}

// NewCelestialBody resolves the NAIF identity of the definition and samples its
// orbit from the ephemeris, starting at conf.OrbitStart.
func NewCelestialBody(eph *Ephemeris, def BodyDefinition, conf Config) (*CelestialBody, error) {
	c := &CelestialBody{Radius: def.Radius, Period: def.Period, Color: def.Color, Label: def.Label, eph: eph}
	var err error
	switch {
	case def.Name == "" && def.ID == nil:
		return nil, errors.New("please define a body with a NAIF name **or** a NAIF id, e.g. 'MARS' or 499")
	case def.Name != "" && def.ID != nil:
		return nil, errors.New("please only define a NAIF name **or** a NAIF id")
	case def.Name != "":
		if c.ID, err = NAIFID(def.Name); err != nil {
			return nil, err
		}
		c.Name, _ = NAIFName(c.ID)
	default:
		if c.Name, err = NAIFName(*def.ID); err != nil {
			return nil, err
		}
		c.ID = *def.ID
	}
	if def.Radius <= 0 {
		return nil, errors.Errorf("%s: radius must be positive, got %f km", c.Name, def.Radius)
	}
	if def.Period <= 0 {
		return nil, errors.Errorf("%s: orbital period must be positive, got %f years", c.Name, def.Period)
	}
	if c.Color == "" {
		c.Color = defaultColor
	}
	if c.Label == "" {
		c.Label = c.Name
	}
	if c.Orbit, err = c.sampleOrbit(conf.OrbitStart, conf.Samples); err != nil {
		return nil, errors.Wrapf(err, "could not compute orbit of %s", c.Name)
	}
	return c, nil
}

// sampleOrbit samples one orbital period from start. The span is the whole
// number of days in the period.
func (c *CelestialBody) sampleOrbit(start time.Time, samples int) (OrbitSample, error) {
	days := math.Floor(c.Period * DaysPerYear)
	o := OrbitSample{Start: start, StartET: DateToET(start), Step: days * secondsPerDay / float64(samples)}
	ets := make([]float64, samples)
	for i := range ets {
		ets[i] = o.ET(i)
	}
	km, err := c.eph.Positions(c.ID, ets, HCI, SSB)
	if err != nil {
		return OrbitSample{}, err
	}
	for i := range km {
		km[i] = scale(1/AU, km[i])
	}
	o.Positions = km
	return o, nil
}

// PositionAt returns the position of the body in HCI relative to the solar
// system barycenter, and its distance to the Sun.
func (c *CelestialBody) PositionAt(dt time.Time) (Position, error) {
	return c.PositionIn(dt, HCI, SSB)
}

// PositionIn is PositionAt with an explicit frame and observer.
func (c *CelestialBody) PositionIn(dt time.Time, frame Frame, observer int) (Position, error) {
	et := DateToET(dt)
	r, err := c.eph.Position(c.ID, et, frame, observer)
	if err != nil {
		return Position{}, errors.Wrapf(err, "position of %s on %s", c.Label, dt.Format(DateFormat))
	}
	helio, err := c.eph.Position(c.ID, et, J2000, SunID)
	if err != nil {
		return Position{}, errors.Wrapf(err, "distance of %s to the Sun", c.Label)
	}
	return Position{Epoch: dt, R: scale(1/AU, r), SunDistance: Norm(helio) / AU}, nil
}

// DefaultBodies returns the Sun, the planets and Pluto as plotted by default.
func DefaultBodies() []BodyDefinition {
	return []BodyDefinition{
		{Name: "SUN", Radius: 695700, Period: 1, Color: "#ffd000"},
		{Name: "MERCURY BARYCENTER", Radius: 2440, Period: 87.97 / DaysPerYear, Color: "#aa9e91", Label: "MERCURY"},
		{Name: "VENUS BARYCENTER", Radius: 6052, Period: 224.7 / DaysPerYear, Color: "#f2b94f", Label: "VENUS"},
		{Name: "EARTH BARYCENTER", Radius: 6378, Period: 1, Color: "#02721e", Label: "EARTH"},
		{Name: "MARS BARYCENTER", Radius: 3396, Period: 1.88, Color: "#cc2504", Label: "MARS"},
		{Name: "JUPITER BARYCENTER", Radius: 71492, Period: 11.86, Color: "#c18503", Label: "JUPITER"},
		{Name: "SATURN BARYCENTER", Radius: 60268, Period: 29.46, Color: "#e0c147", Label: "SATURN"},
		{Name: "URANUS BARYCENTER", Radius: 25559, Period: 84.01, Color: "#2dc49c", Label: "URANUS"},
		{Name: "NEPTUNE BARYCENTER", Radius: 24764, Period: 164.79, Color: "#1ebfdb", Label: "NEPTUNE"},
		{Name: "PLUTO BARYCENTER", Radius: 1195, Period: 248.59, Color: "#f1c9a2", Label: "PLUTO"},
	}
}
