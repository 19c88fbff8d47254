package solbirthday

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Frame is the name of a reference frame a position can be expressed in.
type Frame string

const (
	// EclipJ2000 is the mean ecliptic and equinox of J2000. Engines work in this frame.
	EclipJ2000 Frame = "ECLIPJ2000"
	// J2000 is the mean equator and equinox of J2000.
	J2000 Frame = "J2000"
	// HCI is the heliocentric inertial frame: Z along the Sun's spin axis, X
	// towards the ascending node of the solar equator on the ecliptic of J2000.
	HCI Frame = "HCI"
)

const (
	// obliquityJ2000 is the mean obliquity of the ecliptic at J2000, in degrees.
	obliquityJ2000 = 23.4392911
	// solarNodeJ2000 is the longitude of the ascending node of the solar equator, in degrees.
	solarNodeJ2000 = 75.76
	// solarInclination is the inclination of the solar equator on the ecliptic, in degrees.
	solarInclination = 7.25
)

// FrameFromString returns the frame from its name.
func FrameFromString(name string) (Frame, error) {
	switch Frame(name) {
	case EclipJ2000, J2000, HCI:
		return Frame(name), nil
	default:
		return "", errors.Errorf("unknown frame '%s'", name)
	}
}

// FromEcliptic returns the rotation from ECLIPJ2000 to the frame.
func (f Frame) FromEcliptic() *mat.Dense {
	switch f {
	case J2000:
		return R1(-obliquityJ2000 * deg2rad)
	case HCI:
		var m mat.Dense
		m.Mul(R1(solarInclination*deg2rad), R3(solarNodeJ2000*deg2rad))
		return &m
	default:
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
}

// Rotate expresses the ECLIPJ2000 vector v in the frame.
func (f Frame) Rotate(v []float64) []float64 {
	if f == EclipJ2000 || f == "" {
		return append([]float64(nil), v...)
	}
	return MxV33(f.FromEcliptic(), v)
}

// PQW2Ecliptic converts a perifocal vector into the ecliptic frame the elements are given in.
func PQW2Ecliptic(i, ω, Ω float64, vI []float64) []float64 {
	var mulM mat.Dense
	mulM.Mul(R3(-Ω), R1(-i))
	mulM.Mul(&mulM, R3(-ω))
	return MxV33(&mulM, vI)
}

// ViewMatrix returns the rotation to an observer looking back at the origin
// from the given elevation and azimuth (radians). After rotation, the first
// component is the depth towards the observer, the second the horizontal screen
// axis and the third the vertical screen axis.
func ViewMatrix(elevation, azimuth float64) *mat.Dense {
	var m mat.Dense
	m.Mul(R2(-elevation), R3(azimuth))
	return &m
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v []float64) (o []float64) {
	vVec := mat.NewVecDense(len(v), v)
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}
