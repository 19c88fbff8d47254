package solbirthday

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// giantGM holds μ (km^3/s^2) of the planets which drive the barycenter offset.
var giantGM = map[int]float64{
	5: 1.26712764e8,
	6: 3.7940585e7,
	7: 5.794548e6,
	8: 6.836527e6,
}

// sunGM is the Sun's μ in km^3/s^2.
const sunGM = 1.32712440018e11

// barycenterCacheSize is the number of epochs for which the barycenter offset is kept.
const barycenterCacheSize = 4096

// Ephemeris answers position queries on top of an Engine: it selects the
// observer, rotates into the requested frame and handles the barycenter.
type Ephemeris struct {
	engine Engine
	pool   *KernelPool
	ssb    *lru.Cache[float64, []float64]
}

// NewEphemeris returns an Ephemeris using the provided engine. The pool may be
// nil for engines which do not need kernels.
func NewEphemeris(engine Engine, pool *KernelPool) *Ephemeris {
	if pool == nil {
		pool = NewKernelPool(nil)
	}
	ssb, err := lru.New[float64, []float64](barycenterCacheSize)
	if err != nil {
		// Only returned for a non positive size.
		panic(err)
	}
	return &Ephemeris{engine: engine, pool: pool, ssb: ssb}
}

// Engine returns the underlying engine.
func (e *Ephemeris) Engine() Engine {
	return e.engine
}

// Kernels returns the kernel pool.
func (e *Ephemeris) Kernels() *KernelPool {
	return e.pool
}

// Position returns the position in km of the target relative to the observer
// at the ephemeris time, expressed in the frame. Light time is not corrected.
func (e *Ephemeris) Position(target int, et float64, frame Frame, observer int) ([]float64, error) {
	jde := ETToJDE(et)
	rT, err := e.helio(target, jde)
	if err != nil {
		return nil, errors.Wrapf(err, "target %d", target)
	}
	rO, err := e.helio(observer, jde)
	if err != nil {
		return nil, errors.Wrapf(err, "observer %d", observer)
	}
	return frame.Rotate(sub(rT, rO)), nil
}

// Positions is Position over several ephemeris times.
func (e *Ephemeris) Positions(target int, ets []float64, frame Frame, observer int) ([][]float64, error) {
	rs := make([][]float64, len(ets))
	for i, et := range ets {
		r, err := e.Position(target, et, frame, observer)
		if err != nil {
			return nil, err
		}
		rs[i] = r
	}
	return rs, nil
}

// helio returns the heliocentric ECLIPJ2000 position of any body, including the barycenter.
func (e *Ephemeris) helio(id int, jde float64) ([]float64, error) {
	if id == SSB {
		return e.barycenter(jde)
	}
	if !e.engine.Supports(id) {
		return nil, errors.Wrapf(ErrUnknownBody, "engine %s does not support body %d", e.engine.Name(), id)
	}
	return e.engine.Helio(id, jde)
}

// barycenter returns the heliocentric position of the solar system barycenter,
// approximated from the giant planets.
func (e *Ephemeris) barycenter(jde float64) ([]float64, error) {
	if r, ok := e.ssb.Get(jde); ok {
		return r, nil
	}
	r := []float64{0, 0, 0}
	total := sunGM
	for planet := 5; planet <= 8; planet++ {
		μ := giantGM[planet]
		rP, err := e.engine.Helio(planet, jde)
		if err != nil {
			return nil, errors.Wrap(err, "barycenter")
		}
		for i := range r {
			r[i] += μ * rP[i]
		}
		total += μ
	}
	r = scale(1/total, r)
	e.ssb.Add(jde, r)
	return r, nil
}
