package render

import (
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/benjamin-es-hall/solbirthday"
	"github.com/pkg/errors"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// Elevation and Azimuth of both panels, in degrees.
	Elevation = 25.0
	Azimuth   = 10.0

	// SunCaption is written next to the Sun in the inner panel.
	SunCaption = "The Sun (Sol)"

	legendHeight = 0.08 // of the figure height
	outerSunSize = 0.25 // of the Sun's scaled size
	legendSize   = 0.5  // of every planet's scaled size
	legendLabelY = 0.05
	legendDotY   = 0.5
	labelAngle   = 40 * math.Pi / 180
	titleSize    = 25
)

var (
	boldFont     = font.Font{Typeface: plot.DefaultFont.Typeface, Variant: "Sans", Weight: xfont.WeightBold}
	sunCaptionAt = []float64{0.08, 0.08, 0.08}
	dashes       = []vg.Length{vg.Points(4), vg.Points(2)}
)

// InnerView sees the orbits up to Mars.
func InnerView() *View {
	return NewView(Elevation, Azimuth, [2]float64{-0.75, 1}, [2]float64{-0.75, 1.5}, [2]float64{-1, 1})
}

// OuterView sees the orbits up to Pluto.
func OuterView() *View {
	return NewView(Elevation, Azimuth, [2]float64{-12, 30}, [2]float64{-26, 18}, [2]float64{-40, 40})
}

// Figure draws a solar system: the inner planets, the outer planets in the
// lower right corner, and a legend strip of the distances to the Sun.
type Figure struct {
	Width, Height vg.Length
	DPI           int
	Inner, Outer  *View
	sys           *solbirthday.SolarSystem
}

// NewFigure returns a figure of the system with the size and resolution of conf.
func NewFigure(sys *solbirthday.SolarSystem, conf solbirthday.Config) *Figure {
	return &Figure{
		Width:  vg.Length(conf.Width) * vg.Inch,
		Height: vg.Length(conf.Height) * vg.Inch,
		DPI:    conf.DPI,
		Inner:  InnerView(),
		Outer:  OuterView(),
		sys:    sys,
	}
}

// Render draws the system on date into a new image. A zero date draws the
// orbits only.
func (f *Figure) Render(date time.Time) (*vgimg.Canvas, error) {
	img := vgimg.NewWith(vgimg.UseWH(f.Width, f.Height), vgimg.UseDPI(f.DPI), vgimg.UseBackgroundColor(color.Black))
	if err := f.Draw(draw.New(img), date); err != nil {
		return nil, err
	}
	return img, nil
}

// Draw draws the system on date onto c.
func (f *Figure) Draw(c draw.Canvas, date time.Time) error {
	var positions map[string]solbirthday.Position
	if !date.IsZero() {
		var err error
		if positions, err = f.sys.PositionsAt(date); err != nil {
			return err
		}
	}
	c.SetColor(color.Black)
	c.Fill(c.Rectangle.Path())

	size := c.Rectangle.Size()
	innerC := draw.Crop(c, 0, 0, 0, -size.Y*legendHeight)
	outerC := draw.Crop(c, size.X/2, 0, 0, -size.Y*2/3)

	inner, err := f.panel(f.Inner, innerC, true, positions)
	if err != nil {
		return errors.Wrap(err, "inner panel")
	}
	inner.BackgroundColor = color.Black
	inner.Draw(innerC)

	outer, err := f.panel(f.Outer, outerC, false, positions)
	if err != nil {
		return errors.Wrap(err, "outer panel")
	}
	outer.Draw(outerC)

	if positions == nil {
		return nil
	}
	legendC := draw.Crop(c, 0, 0, size.Y*(1-legendHeight), 0)
	legend, err := f.legend(positions)
	if err != nil {
		return errors.Wrap(err, "legend")
	}
	legend.Draw(legendC)

	title := textStyle(color.White, titleSize)
	title.XAlign, title.YAlign = draw.XLeft, draw.YBottom
	c.FillText(title, vg.Point{X: c.Min.X + size.X*0.05, Y: c.Min.Y + size.Y*0.05}, solbirthday.Title(date))
	return nil
}

// panel plots the orbits of the inner or of the outer bodies, and where they
// are when positions is not nil.
func (f *Figure) panel(v *View, c draw.Canvas, inner bool, positions map[string]solbirthday.Position) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = nil
	p.HideAxes()
	sun, hasSun := f.sys.Sun()
	for _, label := range f.sys.Labels() {
		if solbirthday.IsInner(label) != inner {
			continue
		}
		body := f.sys.Bodies[label]
		clr, err := ParseHex(body.Color)
		if err != nil {
			return nil, err
		}
		pts := make(plotter.XYs, body.Orbit.Len())
		for i, r := range body.Orbit.Positions {
			pts[i].X, pts[i].Y = v.Project(r)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "orbit of %s", label)
		}
		line.LineStyle = draw.LineStyle{Color: clr, Width: vg.Points(1), Dashes: dashes}
		p.Add(line)
	}

	if positions != nil {
		if hasSun {
			clr, err := ParseHex(sun.Color)
			if err != nil {
				return nil, err
			}
			size := f.sys.Sizes[sun.Label]
			if !inner {
				size *= outerSunSize
			}
			s, err := disc(0, 0, clr, size)
			if err != nil {
				return nil, err
			}
			p.Add(s)
			if inner {
				x, y := v.Project(sunCaptionAt)
				caption, err := textLabel(x, y, SunCaption, textStyle(clr, 10))
				if err != nil {
					return nil, err
				}
				caption.TextStyle[0].XAlign, caption.TextStyle[0].YAlign = draw.XLeft, draw.YBottom
				p.Add(caption)
			}
		}
		for _, label := range f.sys.Labels() {
			pos, ok := positions[label]
			if !ok || solbirthday.IsInner(label) != inner {
				continue
			}
			body := f.sys.Bodies[label]
			clr, err := ParseHex(body.Color)
			if err != nil {
				return nil, err
			}
			x, y := v.Project(pos.R)
			s, err := disc(x, y, clr, f.sys.Sizes[label])
			if err != nil {
				return nil, err
			}
			p.Add(s)
		}
	}

	size := c.Rectangle.Size()
	xmin, xmax, ymin, ymax := v.Bounds()
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = fitAspect(xmin, xmax, ymin, ymax, float64(size.X), float64(size.Y))
	return p, nil
}

// legend places every body at the log10 of its distance to the Sun, and the
// Sun itself at the left edge.
func (f *Figure) legend(positions map[string]solbirthday.Position) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = nil
	p.HideAxes()
	xs := []float64{}
	for _, name := range f.sys.Labels() {
		pos, ok := positions[name]
		if !ok || pos.SunDistance <= 0 {
			continue
		}
		body := f.sys.Bodies[name]
		clr, err := ParseHex(body.Color)
		if err != nil {
			return nil, err
		}
		x := math.Log10(pos.SunDistance)
		xs = append(xs, x)
		s, err := disc(x, legendDotY, clr, f.sys.Sizes[name]*legendSize)
		if err != nil {
			return nil, err
		}
		p.Add(s)
		sty := textStyle(clr, 8)
		sty.Rotation = labelAngle
		l, err := textLabel(x, legendLabelY, name, sty)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}
	lo, hi := -1.0, 2.0
	if len(xs) > 0 {
		lo, hi = floats.Min(xs), floats.Max(xs)
	}
	pad := 0.1*(hi-lo) + 0.1
	p.X.Min, p.X.Max = lo-pad, hi+pad
	p.Y.Min, p.Y.Max = 0, 1
	if sun, ok := f.sys.Sun(); ok {
		clr, err := ParseHex(sun.Color)
		if err != nil {
			return nil, err
		}
		s, err := disc(p.X.Min, legendDotY, clr, f.sys.Sizes[sun.Label])
		if err != nil {
			return nil, err
		}
		p.Add(s)
	}
	return p, nil
}

// MarkerRadius converts a scaled size, an area in square points, to a disc radius.
func MarkerRadius(size float64) vg.Length {
	return vg.Points(math.Sqrt(math.Max(size, 0)) / 2)
}

func disc(x, y float64, clr color.Color, size float64) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = draw.GlyphStyle{Color: clr, Radius: MarkerRadius(size), Shape: draw.CircleGlyph{}}
	return s, nil
}

func textLabel(x, y float64, txt string, sty text.Style) (*plotter.Labels, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: plotter.XYs{{X: x, Y: y}}, Labels: []string{txt}})
	if err != nil {
		return nil, err
	}
	l.TextStyle[0] = sty
	return l, nil
}

func textStyle(clr color.Color, size vg.Length) text.Style {
	return text.Style{
		Color:   clr,
		Font:    font.From(boldFont, size),
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

// ParseHex parses a "#rrggbb" color.
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return color.RGBA{}, errors.Errorf("invalid color '%s'", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrapf(err, "invalid color '%s'", hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Formats are the supported output formats with their MIME types.
var Formats = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// Encoder returns the writer of img in the format, given as an extension.
func Encoder(img *vgimg.Canvas, format string) (io.WriterTo, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "png":
		return vgimg.PngCanvas{Canvas: img}, nil
	case "jpg", "jpeg":
		return vgimg.JpegCanvas{Canvas: img}, nil
	case "tif", "tiff":
		return vgimg.TiffCanvas{Canvas: img}, nil
	}
	return nil, errors.Errorf("unsupported image format '%s' (expected png, jpg or tif)", format)
}

// Encode renders the system on date and writes the image in the format to w.
func (f *Figure) Encode(w io.Writer, date time.Time, format string) error {
	img, err := f.Render(date)
	if err != nil {
		return err
	}
	enc, err := Encoder(img, format)
	if err != nil {
		return err
	}
	_, err = enc.WriteTo(w)
	return err
}

// Save renders the system on date into path, the format following the extension.
func (f *Figure) Save(path string, date time.Time) error {
	ext := filepath.Ext(path)
	if _, ok := Formats[strings.ToLower(strings.TrimPrefix(ext, "."))]; !ok {
		return errors.Errorf("unsupported image format '%s' (expected png, jpg or tif)", ext)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "cannot create %s", dir)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	if err := f.Encode(out, date, ext); err != nil {
		out.Close()
		os.Remove(path)
		return errors.Wrapf(err, "cannot render %s", path)
	}
	return out.Close()
}

// Filename is the default output name for date.
func Filename(date time.Time, format string) string {
	return "solar-system-" + date.Format(solbirthday.DateFormat) + "." + strings.TrimPrefix(format, ".")
}
