package render

import (
	"math"

	"github.com/benjamin-es-hall/solbirthday"
	"gonum.org/v1/gonum/mat"
)

// View is an orthographic 3-D view of a cube of space.
type View struct {
	Elevation, Azimuth float64 // degrees
	Min, Max           float64 // cube limits, identical on every axis
	rot                *mat.Dense
}

// NewView returns a view of the box given by the limits. The box is grown
// into a cube so the three axes share the same scale.
func NewView(elevation, azimuth float64, xlim, ylim, zlim [2]float64) *View {
	lo := math.Min(xlim[0], math.Min(ylim[0], zlim[0]))
	hi := math.Max(xlim[1], math.Max(ylim[1], zlim[1]))
	return &View{
		Elevation: elevation,
		Azimuth:   azimuth,
		Min:       lo,
		Max:       hi,
		rot:       solbirthday.ViewMatrix(solbirthday.Deg2rad(elevation), solbirthday.Deg2rad(azimuth)),
	}
}

// Project returns the screen coordinates of r.
func (v *View) Project(r []float64) (x, y float64) {
	p := solbirthday.MxV33(v.rot, r)
	return p[1], p[2]
}

// Bounds returns the screen extent of the cube.
func (v *View) Bounds() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, cx := range []float64{v.Min, v.Max} {
		for _, cy := range []float64{v.Min, v.Max} {
			for _, cz := range []float64{v.Min, v.Max} {
				x, y := v.Project([]float64{cx, cy, cz})
				xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
				ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
			}
		}
	}
	return
}

// fitAspect grows the shorter side of the extent so that one data unit has the
// same length on both screen axes of a w by h area.
func fitAspect(xmin, xmax, ymin, ymax, w, h float64) (float64, float64, float64, float64) {
	dx, dy := xmax-xmin, ymax-ymin
	if w <= 0 || h <= 0 || dx <= 0 || dy <= 0 {
		return xmin, xmax, ymin, ymax
	}
	if dx/dy < w/h {
		grow := (dy*w/h - dx) / 2
		return xmin - grow, xmax + grow, ymin, ymax
	}
	grow := (dx*h/w - dy) / 2
	return xmin, xmax, ymin - grow, ymax + grow
}
