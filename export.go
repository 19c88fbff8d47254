package solbirthday

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are currently supported in Cosmographia trajectory types")
	}
	return nil
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState definition.
type CgInterpolatedState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// hexToRGB converts "#rrggbb" to Cosmographia's [0, 1] color triplet.
func hexToRGB(hex string) []float64 {
	hex = strings.TrimPrefix(hex, "#")
	rgb := []float64{1, 1, 1}
	if len(hex) != 6 {
		return rgb
	}
	for i := 0; i < 3; i++ {
		if v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8); err == nil {
			rgb[i] = float64(v) / 255
		}
	}
	return rgb
}

// orbitStates turns an orbit sample into interpolated states, with velocities
// from central differences (one sided at the ends).
func orbitStates(o OrbitSample) []CgInterpolatedState {
	n := o.Len()
	states := make([]CgInterpolatedState, n)
	for i := 0; i < n; i++ {
		prev, next := i-1, i+1
		if prev < 0 {
			prev = 0
		}
		if next >= n {
			next = n - 1
		}
		vel := []float64{0, 0, 0}
		if dt := o.Step * float64(next-prev); dt > 0 {
			vel = scale(AU/dt, sub(o.Positions[next], o.Positions[prev]))
		}
		states[i] = CgInterpolatedState{
			JD:       ETToJDE(o.ET(i)),
			Position: scale(AU, o.Positions[i]),
			Velocity: vel,
		}
	}
	return states
}

// writeInterpolatedFile writes the orbit of the body as an xyzv file in dir.
func writeInterpolatedFile(dir string, body *CelestialBody) (string, error) {
	name := fmt.Sprintf("orbit-%s.xyzv", strings.ToLower(strings.Replace(body.Label, " ", "_", -1)))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	// Header
	fmt.Fprintf(f, `# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a TDB Julian date
#   Position in km, HCI, relative to the solar system barycenter
#   Velocity in km/sec
#   Orbit of %s`, time.Now().UTC(), body)
	for _, st := range orbitStates(body.Orbit) {
		if _, err := f.WriteString("\n" + st.ToText()); err != nil {
			return "", err
		}
	}
	_, err = f.WriteString("\n")
	return name, err
}

// ExportCosmographia writes one xyzv file per orbit and a catalog referencing
// them into dir. It returns the catalog path.
func ExportCosmographia(sys *SolarSystem, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create %s", dir)
	}
	items := []*CgItems{}
	for _, label := range sys.Labels() {
		body := sys.Bodies[label]
		src, err := writeInterpolatedFile(dir, body)
		if err != nil {
			return "", errors.Wrapf(err, "cannot export orbit of %s", label)
		}
		traj := &CgTrajectory{Type: "InterpolatedStates", Source: src}
		if err := traj.Validate(); err != nil {
			return "", err
		}
		color := hexToRGB(body.Color)
		end := body.Orbit.Epoch(body.Orbit.Len() - 1)
		items = append(items, &CgItems{
			Class:           "planet",
			Name:            label,
			StartTime:       body.Orbit.Start.UTC().Format(time.RFC3339),
			EndTime:         end.UTC().Format(time.RFC3339),
			Center:          "SSB",
			TrajectoryFrame: string(HCI),
			Trajectory:      traj,
			Label:           &CgLabel{Color: color, FadeSize: 1000000, ShowText: true},
			TrajectoryPlot:  &CgTrajectoryPlot{Color: color, LineWidth: 1, Duration: fmt.Sprintf("%d d", int(body.Orbit.Days()+1)), Lead: "0 d", SampleCount: body.Orbit.Len()},
		})
	}
	c := CgCatalog{Version: "1.0", Name: "solbirthday", Items: items}
	path := filepath.Join(dir, "catalog-solbirthday.json")
	marsh, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, marsh, 0644); err != nil {
		return "", errors.Wrapf(err, "cannot write %s", path)
	}
	return path, nil
}

// WritePositionsCSV writes the positions of the bodies, ordered as sys.Labels.
func WritePositionsCSV(w io.Writer, sys *SolarSystem, positions map[string]Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"label", "naif_id", "date", "jd", "x_au", "y_au", "z_au", "sun_distance_au"}); err != nil {
		return err
	}
	for _, label := range sys.Labels() {
		pos, ok := positions[label]
		if !ok {
			continue
		}
		body := sys.Bodies[label]
		record := []string{
			label,
			strconv.Itoa(body.ID),
			pos.Epoch.Format(DateFormat),
			strconv.FormatFloat(julian.TimeToJD(pos.Epoch), 'f', 1, 64),
			strconv.FormatFloat(pos.R[0], 'f', 6, 64),
			strconv.FormatFloat(pos.R[1], 'f', 6, 64),
			strconv.FormatFloat(pos.R[2], 'f', 6, 64),
			strconv.FormatFloat(pos.SunDistance, 'f', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
