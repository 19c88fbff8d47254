package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benjamin-es-hall/solbirthday"
	"github.com/benjamin-es-hall/solbirthday/render"
	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Draws the solar system on a date and saves the figure.

var (
	date       string
	out        string
	metakernel string
	cosmoDir   string
	csvPath    string
	frameName  string
	kernels    bool
	verbose    bool
)

func init() {
	flag.StringVar(&date, "date", "", "date to plot as YYYY-MM-DD (default today, empty string with -date= for the orbits only)")
	flag.StringVar(&out, "out", "", "output image, png, jpg or tif (default solar-system-<date>.png in the output path)")
	flag.StringVar(&metakernel, "metakernel", "", "metakernel TOML file (default $"+solbirthday.MetakernelEnv+" or "+solbirthday.DefaultMetakernel+")")
	flag.StringVar(&cosmoDir, "cosmo", "", "also export the orbits as a Cosmographia catalog in this directory")
	flag.StringVar(&csvPath, "csv", "", "also write the positions on the date to this CSV file")
	flag.StringVar(&frameName, "frame", string(solbirthday.HCI), "frame of the CSV positions: HCI, ECLIPJ2000 or J2000")
	flag.BoolVar(&kernels, "kernels", false, "list the loaded kernels")
	flag.BoolVar(&verbose, "verbose", false, "log debug information")
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\nExiting...\n", msg, err)
	os.Exit(1)
}

func main() {
	flag.Parse()
	logger := kitlog.NewNopLogger()
	if verbose {
		logger = kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)), "ts", kitlog.DefaultTimestampUTC)
	}

	path := solbirthday.MetakernelPath(metakernel)
	conf, err := solbirthday.LoadConfig(path)
	if err != nil {
		fatal("could not read the metakernel", err)
	}
	fmt.Println("LOADING...")
	sys, err := solbirthday.LoadSolarSystem(conf, logger)
	if err != nil {
		fatal("kernels cannot be located or their contents failed to load", err)
	}
	fmt.Println("LOADED")

	if kernels {
		loaded := sys.Ephemeris().Kernels().Loaded()
		fmt.Printf("%d ALL kernels loaded (engine %s):\n", len(loaded), sys.Ephemeris().Engine().Name())
		for _, k := range loaded {
			fmt.Println(k)
		}
	}

	// Visit only walks the flags which were set, so -date= differs from no -date.
	dateSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "date" {
			dateSet = true
		}
	})
	// A zero date plots the orbits only.
	var plotDate time.Time
	switch {
	case !dateSet:
		plotDate = sys.Calendar.Today()
	case date != "":
		if plotDate, err = sys.Calendar.Parse(date); err != nil {
			fatal("invalid date", err)
		}
	}

	if cosmoDir != "" {
		catalog, err := solbirthday.ExportCosmographia(sys, cosmoDir)
		if err != nil {
			fatal("could not export the orbits", err)
		}
		fmt.Printf("Catalog saved as: %s\n", catalog)
	}

	if !plotDate.IsZero() {
		fmt.Printf("Plotting position of planets on the date: %s\n", plotDate.Format(solbirthday.DateFormat))
	} else {
		fmt.Println("PLOTTING ORBITS")
	}
	if csvPath != "" {
		if plotDate.IsZero() {
			fatal("no positions to write", errors.New("-csv needs a date"))
		}
		frame, err := solbirthday.FrameFromString(strings.ToUpper(frameName))
		if err != nil {
			fatal("invalid frame", err)
		}
		if err := writeCSV(sys, plotDate, frame, csvPath); err != nil {
			fatal("could not write the positions", err)
		}
		fmt.Printf("Positions saved as: %s\n", csvPath)
	}

	fn := out
	if fn == "" {
		name := "solar-system-orbits.png"
		if !plotDate.IsZero() {
			name = render.Filename(plotDate, "png")
		}
		fn = filepath.Join(conf.OutputDir, name)
	}
	if err := render.NewFigure(sys, conf).Save(fn, plotDate); err != nil {
		fatal("could not save the figure", err)
	}
	fmt.Printf("File saved as: %s\n", fn)
}

func writeCSV(sys *solbirthday.SolarSystem, dt time.Time, frame solbirthday.Frame, path string) error {
	positions, err := sys.PositionsIn(dt, frame)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := solbirthday.WritePositionsCSV(f, sys, positions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
