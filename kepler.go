package solbirthday

import (
	"math"

	"github.com/pkg/errors"
)

// meanElements are Keplerian elements at J2000 with their rates per Julian
// century: a (AU), e, i (deg), mean longitude L (deg), longitude of perihelion
// ϖ (deg) and longitude of the ascending node Ω (deg).
type meanElements struct {
	a, e, i, L, ϖ, Ω       float64
	da, de, di, dL, dϖ, dΩ float64
}

// keplerElements holds the approximate elements valid from 1800 to 2050
// (Standish, JPL Solar System Dynamics), indexed by planet number.
var keplerElements = map[int]meanElements{
	1: {0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
	2: {0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
	3: {1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0},
	4: {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
	5: {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
	6: {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
	7: {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
	8: {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
	9: {39.48211675, 0.24882730, 17.14001206, 238.92903833, 224.06891629, 110.30393684,
		-0.00031596, 0.00005170, 0.00004818, 145.20780515, -0.04062942, -0.01183482},
}

// KeplerEngine propagates mean Keplerian elements. It needs no kernel and is
// accurate to a few arc minutes for the inner planets.
type KeplerEngine struct{}

// Name implements the Engine interface.
func (KeplerEngine) Name() string {
	return "kepler"
}

// Supports implements the Engine interface.
func (KeplerEngine) Supports(id int) bool {
	return id == SunID || planetIndex(id) > 0
}

// Helio implements the Engine interface.
func (KeplerEngine) Helio(id int, jde float64) ([]float64, error) {
	if id == SunID {
		return []float64{0, 0, 0}, nil
	}
	el, ok := keplerElements[planetIndex(id)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBody, "kepler cannot compute body %d", id)
	}
	T := (jde - J2000JD) / 36525
	a := el.a + el.da*T
	e := el.e + el.de*T
	i := (el.i + el.di*T) * deg2rad
	L := el.L + el.dL*T
	ϖ := el.ϖ + el.dϖ*T
	Ω := (el.Ω + el.dΩ*T) * deg2rad
	ω := ϖ*deg2rad - Ω
	M := math.Remainder((L-ϖ)*deg2rad, 2*math.Pi)
	E := eccentricAnomaly(M, e)
	sinE, cosE := math.Sincos(E)
	R := []float64{a * (cosE - e), a * math.Sqrt(1-e*e) * sinE, 0}
	return scale(AU, PQW2Ecliptic(i, ω, Ω, R)), nil
}

// eccentricAnomaly solves Kepler's equation M = E - e sin E with Newton's method.
// M must be in [-π, π].
func eccentricAnomaly(M, e float64) float64 {
	E := M
	if e > 0.8 {
		// Start on the same side as M so that the iteration stays monotonic.
		E = math.Copysign(math.Pi, M)
	}
	for iter := 0; iter < 50; iter++ {
		sinE, cosE := math.Sincos(E)
		δ := (E - e*sinE - M) / (1 - e*cosE)
		E -= δ
		if math.Abs(δ) < 1e-12 {
			break
		}
	}
	return E
}
