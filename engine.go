package solbirthday

import (
	"math"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/unit"
)

const (
	// AU is one astronomical unit in kilometers (IAU 2012), not the rounded
	// 149.6e6. Engines work in AU so positions in AU do not depend on it, only
	// the kilometer values exported for Cosmographia do.
	AU = 1.49597870700e8
)

// Engine is an ephemeris source. It only knows heliocentric positions in the
// ECLIPJ2000 frame; observers and frames are handled by Ephemeris.
type Engine interface {
	// Name returns the name used in the metakernel to select this engine.
	Name() string
	// Supports returns whether the engine can compute the NAIF body.
	Supports(id int) bool
	// Helio returns the heliocentric ECLIPJ2000 position in km at the Julian ephemeris day.
	Helio(id int, jde float64) ([]float64, error)
}

// VSOP87Engine computes planet positions from VSOP87B kernels and Pluto's
// position from Meeus' series.
type VSOP87Engine struct {
	pool *KernelPool
}

// NewVSOP87Engine returns an engine reading its planets from the kernel pool.
func NewVSOP87Engine(pool *KernelPool) *VSOP87Engine {
	return &VSOP87Engine{pool}
}

// Name implements the Engine interface.
func (e *VSOP87Engine) Name() string {
	return "vsop87"
}

// Supports implements the Engine interface.
func (e *VSOP87Engine) Supports(id int) bool {
	return id == SunID || planetIndex(id) > 0
}

// Helio implements the Engine interface.
func (e *VSOP87Engine) Helio(id int, jde float64) ([]float64, error) {
	if id == SunID {
		return []float64{0, 0, 0}, nil
	}
	body := planetIndex(id)
	switch body {
	case 0:
		return nil, errors.Wrapf(ErrUnknownBody, "vsop87 cannot compute body %d", id)
	case 9:
		// Special case in Sonia Keys' Meeus
		l, b, r := pluto.Heliocentric(jde)
		return lbr2Cartesian(l, b, r*AU), nil
	}
	k, err := e.pool.forBody(body)
	if err != nil {
		return nil, err
	}
	l, b, r := k.planet.Position2000(jde)
	return lbr2Cartesian(l, b, r*AU), nil
}

// lbr2Cartesian gets the Cartesian coordinates from L, B, R.
func lbr2Cartesian(l, b unit.Angle, r float64) []float64 {
	R := make([]float64, 3)
	sB, cB := math.Sincos(b.Rad())
	sL, cL := math.Sincos(l.Rad())
	R[0] = r * cB * cL
	R[1] = r * cB * sL
	R[2] = r * sB
	return R
}
