package solbirthday

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestEphemerisObservers(t *testing.T) {
	eph := NewEphemeris(KeplerEngine{}, nil)
	if eph.Engine().Name() != "kepler" || eph.Kernels() == nil {
		t.Fatal("unexpected ephemeris")
	}
	et := DateToET(time.Date(2015, 6, 20, 0, 0, 0, 0, time.UTC))
	helio, err := eph.Position(4, et, EclipJ2000, SunID)
	if err != nil {
		t.Fatal(err)
	}
	exp, _ := KeplerEngine{}.Helio(4, ETToJDE(et))
	if !floats.EqualApprox(helio, exp, 1e-6) {
		t.Fatalf("heliocentric Mars %+v != %+v", helio, exp)
	}
	// Swapping target and observer flips the vector.
	back, err := eph.Position(SunID, et, EclipJ2000, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(back, scale(-1, helio), 1e-6) {
		t.Fatal("observer swap did not flip the vector")
	}
	// The barycenter stays within a few solar radii of the Sun.
	ssb, err := eph.Position(SSB, et, EclipJ2000, SunID)
	if err != nil {
		t.Fatal(err)
	}
	if d := Norm(ssb) / AU; d <= 0 || d > 0.015 {
		t.Fatalf("barycenter is %f AU from the Sun", d)
	}
	if eph.ssb.Len() != 1 {
		t.Fatalf("expected one cached barycenter, got %d", eph.ssb.Len())
	}
	again, _ := eph.Position(SSB, et, EclipJ2000, SunID)
	if !vectorsEqual(ssb, again) || eph.ssb.Len() != 1 {
		t.Fatal("barycenter cache miss")
	}
}

func TestEphemerisFrames(t *testing.T) {
	eph := NewEphemeris(KeplerEngine{}, nil)
	et := DateToET(time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC))
	ecl, err := eph.Position(5, et, EclipJ2000, SSB)
	if err != nil {
		t.Fatal(err)
	}
	for _, frame := range []Frame{J2000, HCI} {
		r, err := eph.Position(5, et, frame, SSB)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinRel(Norm(r), Norm(ecl), 1e-12) {
			t.Fatalf("%s changed the distance", frame)
		}
		if floats.EqualApprox(r, ecl, 1e-3) {
			t.Fatalf("%s did not rotate", frame)
		}
		if !vectorsEqual(r, frame.Rotate(ecl)) {
			t.Fatalf("%s rotation differs", frame)
		}
	}
}

func TestEphemerisErrors(t *testing.T) {
	eph := NewEphemeris(KeplerEngine{}, nil)
	if _, err := eph.Position(MoonID, 0, HCI, SSB); errors.Cause(err) != ErrUnknownBody {
		t.Fatalf("expected ErrUnknownBody for the target, got %v", err)
	}
	if _, err := eph.Position(3, 0, HCI, MoonID); errors.Cause(err) != ErrUnknownBody {
		t.Fatalf("expected ErrUnknownBody for the observer, got %v", err)
	}
	// VSOP87 needs the kernels of the giant planets for the barycenter.
	vsop := NewEphemeris(NewVSOP87Engine(NewKernelPool(nil)), nil)
	if _, err := vsop.Position(9, 0, HCI, SSB); errors.Cause(err) != ErrKernelNotLoaded {
		t.Fatalf("expected ErrKernelNotLoaded, got %v", err)
	}
	if _, err := vsop.Position(9, 0, HCI, SunID); err != nil {
		t.Fatalf("Pluto relative to the Sun needs no kernel: %s", err)
	}
}

func TestEphemerisPositions(t *testing.T) {
	eph := NewEphemeris(KeplerEngine{}, nil)
	ets := []float64{0, 86400, 2 * 86400}
	rs, err := eph.Positions(3, ets, HCI, SSB)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != len(ets) {
		t.Fatalf("expected %d positions, got %d", len(ets), len(rs))
	}
	// About a degree a day.
	if d := Norm(sub(rs[1], rs[0])) / AU; !scalar.EqualWithinAbs(d, 2*3.1416/365.25, 2e-3) {
		t.Fatalf("Earth moved %f AU in a day", d)
	}
	if _, err := eph.Positions(MoonID, ets, HCI, SSB); err == nil {
		t.Fatal("expected an error")
	}
}
