package solbirthday

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestLBR2Cartesian(t *testing.T) {
	r := lbr2Cartesian(unit.AngleFromDeg(90), unit.AngleFromDeg(0), 2)
	if !vectorsEqual(r, []float64{0, 2, 0}) {
		t.Fatalf("got %+v", r)
	}
	r = lbr2Cartesian(unit.AngleFromDeg(45), unit.AngleFromDeg(30), 1)
	if !scalar.EqualWithinAbs(Norm(r), 1, 1e-12) || !scalar.EqualWithinAbs(r[2], 0.5, 1e-12) {
		t.Fatalf("got %+v", r)
	}
}

func TestVSOP87Engine(t *testing.T) {
	eng := NewVSOP87Engine(NewKernelPool(nil))
	if eng.Name() != "vsop87" {
		t.Fatal("wrong name")
	}
	if !eng.Supports(SunID) || !eng.Supports(499) || !eng.Supports(9) || eng.Supports(MoonID) {
		t.Fatal("unexpected supported bodies")
	}
	sun, err := eng.Helio(SunID, J2000JD)
	if err != nil || !vectorsEqual(sun, []float64{0, 0, 0}) {
		t.Fatalf("the Sun is at %v (%v)", sun, err)
	}
	if _, err := eng.Helio(4, J2000JD); errors.Cause(err) != ErrKernelNotLoaded {
		t.Fatalf("expected ErrKernelNotLoaded, got %v", err)
	}
	if _, err := eng.Helio(MoonID, J2000JD); errors.Cause(err) != ErrUnknownBody {
		t.Fatalf("expected ErrUnknownBody, got %v", err)
	}
	// Pluto needs no kernel.
	pluto, err := eng.Helio(9, J2000JD)
	if err != nil {
		t.Fatal(err)
	}
	if d := Norm(pluto) / AU; d < 29 || d > 50 {
		t.Fatalf("Pluto is %f AU from the Sun", d)
	}
}

func TestKeplerEarth(t *testing.T) {
	eng := KeplerEngine{}
	if eng.Name() != "kepler" || !eng.Supports(399) || eng.Supports(MoonID) {
		t.Fatal("unexpected kepler engine")
	}
	jde := ETToJDE(DateToET(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)))
	r, err := eng.Helio(3, jde)
	if err != nil {
		t.Fatal(err)
	}
	exp := []float64{-0.17717, 0.96721, 0}
	if !floats.EqualApprox(scale(1/AU, r), exp, 1e-3) {
		t.Fatalf("Earth at J2000: %+v AU", scale(1/AU, r))
	}
	// Close to perihelion in early January.
	if d := Norm(r) / AU; !scalar.EqualWithinAbs(d, 0.9833, 1e-3) {
		t.Fatalf("Earth is %f AU from the Sun", d)
	}
	if _, err := eng.Helio(MoonID, jde); errors.Cause(err) != ErrUnknownBody {
		t.Fatalf("expected ErrUnknownBody, got %v", err)
	}
}

func TestKeplerBounds(t *testing.T) {
	eng := KeplerEngine{}
	for planet, el := range keplerElements {
		peri, apo := el.a*(1-el.e), el.a*(1+el.e)
		for year := 1850; year <= 2100; year += 10 {
			jde := ETToJDE(DateToET(time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC)))
			r, err := eng.Helio(planet, jde)
			if err != nil {
				t.Fatal(err)
			}
			// The rates move a and e a little over the calendar.
			if d := Norm(r) / AU; d < peri*0.99 || d > apo*1.01 {
				t.Fatalf("planet %d is %f AU from the Sun in %d, expected [%f, %f]", planet, d, year, peri, apo)
			}
			if incl := math.Asin(math.Abs(r[2])/Norm(r)) / deg2rad; incl > el.i+0.5 {
				t.Fatalf("planet %d is %f deg off the ecliptic in %d", planet, incl, year)
			}
		}
	}
}

func TestEccentricAnomaly(t *testing.T) {
	for _, e := range []float64{0, 0.0167, 0.2488, 0.9, 0.99} {
		for M := -math.Pi; M <= math.Pi; M += 0.1 {
			E := eccentricAnomaly(M, e)
			if !scalar.EqualWithinAbs(E-e*math.Sin(E), M, 1e-10) {
				t.Fatalf("Kepler's equation not solved for M=%f e=%f", M, e)
			}
		}
	}
	// Negative mean anomalies with a high eccentricity.
	M := -math.Pi + 1.2
	if E := eccentricAnomaly(M, 0.9); E > 0 || E < -math.Pi || !scalar.EqualWithinAbs(E-0.9*math.Sin(E), M, 1e-10) {
		t.Fatalf("E=%f for M=%f", E, M)
	}
}
