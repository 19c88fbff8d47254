package solbirthday

import (
	"math"
	"sort"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// SymbolTop is the largest display size produced by the scaling.
const SymbolTop = 200.0

// innerBodies are drawn on the inner system axes.
var innerBodies = map[string]bool{"MERCURY": true, "VENUS": true, "EARTH": true, "MARS": true}

// SolarSystem holds the bodies by label and their display sizes.
type SolarSystem struct {
	Bodies   map[string]*CelestialBody
	Sizes    map[string]float64
	Calendar Calendar
	eph      *Ephemeris
	logger   kitlog.Logger
	mu       sync.Mutex // serializes queries to the ephemeris
}

// NewSolarSystem builds every body (and its orbit) and scales the display sizes.
func NewSolarSystem(eph *Ephemeris, defs []BodyDefinition, conf Config, logger kitlog.Logger) (*SolarSystem, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	s := &SolarSystem{Bodies: make(map[string]*CelestialBody, len(defs)), Calendar: conf.Calendar, eph: eph, logger: logger}
	order := make([]string, 0, len(defs))
	radii := make([]float64, 0, len(defs))
	for _, def := range defs {
		start := time.Now()
		body, err := NewCelestialBody(eph, def, conf)
		if err != nil {
			return nil, err
		}
		if _, dup := s.Bodies[body.Label]; dup {
			return nil, errors.Errorf("duplicate body label '%s'", body.Label)
		}
		s.Bodies[body.Label] = body
		order = append(order, body.Label)
		radii = append(radii, body.Radius)
		logger.Log("level", "debug", "subsys", "orbit", "body", body.Label, "samples", body.Orbit.Len(), "duration", time.Since(start))
	}
	sizes := LogMinMaxScale(radii, SymbolTop)
	s.Sizes = make(map[string]float64, len(order))
	for i, label := range order {
		s.Sizes[label] = sizes[i]
	}
	logger.Log("level", "info", "subsys", "orbit", "status", "computed", "bodies", len(order))
	return s, nil
}

// LogMinMaxScale scales log10 of the values between 0 and top. The smallest
// value would be invisible at 0 so it is set to 2/3 of the smallest non zero size.
func LogMinMaxScale(values []float64, top float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	ps := make([]float64, len(values))
	for i, v := range values {
		ps[i] = math.Log10(v)
	}
	lo, hi := floats.Min(ps), floats.Max(ps)
	if hi == lo {
		for i := range ps {
			ps[i] = top
		}
		return ps
	}
	minPositive := math.Inf(1)
	for i := range ps {
		ps[i] = top * (ps[i] - lo) / (hi - lo)
		if ps[i] > 0 && ps[i] < minPositive {
			minPositive = ps[i]
		}
	}
	for i := range ps {
		if ps[i] == 0 {
			ps[i] = minPositive * 2 / 3
		}
	}
	return ps
}

// Sun returns the Sun, if it is part of the system.
func (s *SolarSystem) Sun() (*CelestialBody, bool) {
	for _, b := range s.Bodies {
		if b.ID == SunID {
			return b, true
		}
	}
	return nil, false
}

// Labels returns the body labels by increasing orbital period, Sun first.
func (s *SolarSystem) Labels() []string {
	labels := make([]string, 0, len(s.Bodies))
	for l := range s.Bodies {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		bi, bj := s.Bodies[labels[i]], s.Bodies[labels[j]]
		if (bi.ID == SunID) != (bj.ID == SunID) {
			return bi.ID == SunID
		}
		if bi.Period != bj.Period {
			return bi.Period < bj.Period
		}
		return labels[i] < labels[j]
	})
	return labels
}

// IsInner returns whether the body is drawn with the inner planets.
func IsInner(label string) bool {
	return innerBodies[label]
}

// Ephemeris returns the ephemeris the system was built from.
func (s *SolarSystem) Ephemeris() *Ephemeris {
	return s.eph
}

// PositionsAt returns the position of every body but the Sun on the date. The
// Sun is always drawn at the origin.
func (s *SolarSystem) PositionsAt(dt time.Time) (map[string]Position, error) {
	return s.PositionsIn(dt, HCI)
}

// PositionsIn is PositionsAt with the positions expressed in frame.
func (s *SolarSystem) PositionsIn(dt time.Time, frame Frame) (map[string]Position, error) {
	if err := s.Calendar.Check(dt); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	positions := make(map[string]Position, len(s.Bodies))
	for label, body := range s.Bodies {
		if body.ID == SunID {
			continue
		}
		pos, err := body.PositionIn(dt, frame, SSB)
		if err != nil {
			return nil, err
		}
		positions[label] = pos
	}
	s.logger.Log("level", "info", "subsys", "ephem", "date", dt.Format(DateFormat), "frame", frame, "bodies", len(positions))
	return positions, nil
}
