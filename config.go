package solbirthday

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultMetakernel is where the metakernel is expected when no other path is given.
	DefaultMetakernel = "./assets/ephemeris/metakernel.toml"
	// MetakernelEnv overrides DefaultMetakernel.
	MetakernelEnv = "SOLBIRTHDAY_METAKERNEL"
)

// Config is read from the metakernel.
type Config struct {
	Engine        string
	PathValues    string
	KernelsToLoad []string
	OrbitStart    time.Time
	Samples       int
	Calendar      Calendar
	DPI           int
	Width, Height float64 // inches
	OutputDir     string
	ServerAddr    string
}

// MetakernelPath returns the metakernel to use: the provided path if any,
// then the environment variable, then the default.
func MetakernelPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(MetakernelEnv); env != "" {
		return env
	}
	return DefaultMetakernel
}

func setDefaults(v *viper.Viper) {
	cal := DefaultCalendar()
	v.SetDefault("kernels.engine", "vsop87")
	v.SetDefault("kernels.path_values", ".")
	v.SetDefault("kernels.kernels_to_load", []string{})
	v.SetDefault("orbit.start", "1850-01-01")
	v.SetDefault("orbit.samples", 1000)
	v.SetDefault("calendar.min", cal.Min.Format(DateFormat))
	v.SetDefault("calendar.max", cal.Max.Format(DateFormat))
	v.SetDefault("render.dpi", 300)
	v.SetDefault("render.width", 16.0)
	v.SetDefault("render.height", 9.0)
	v.SetDefault("general.output_path", ".")
	v.SetDefault("server.address", ":8080")
}

// DefaultConfig returns the configuration used when the metakernel sets nothing.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	conf, err := configFrom(v)
	if err != nil {
		// The defaults are constants.
		panic(err)
	}
	return conf
}

// LoadConfig reads the metakernel at path.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" || filepath.Ext(path) == ".mk" {
		v.SetConfigType("toml")
	}
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "metakernel %s cannot be located or its contents failed to load", path)
	}
	conf, err := configFrom(v)
	if err != nil {
		return Config{}, errors.Wrapf(err, "metakernel %s", path)
	}
	// Kernel paths are relative to the metakernel.
	if !filepath.IsAbs(conf.PathValues) {
		conf.PathValues = filepath.Join(filepath.Dir(path), conf.PathValues)
	}
	return conf, nil
}

func configFrom(v *viper.Viper) (Config, error) {
	conf := Config{
		Engine:        strings.ToLower(v.GetString("kernels.engine")),
		PathValues:    v.GetString("kernels.path_values"),
		KernelsToLoad: v.GetStringSlice("kernels.kernels_to_load"),
		Samples:       v.GetInt("orbit.samples"),
		DPI:           v.GetInt("render.dpi"),
		Width:         v.GetFloat64("render.width"),
		Height:        v.GetFloat64("render.height"),
		OutputDir:     v.GetString("general.output_path"),
		ServerAddr:    v.GetString("server.address"),
	}
	var err error
	if conf.OrbitStart, err = time.Parse(DateFormat, v.GetString("orbit.start")); err != nil {
		return conf, errors.Wrap(err, "could not understand `orbit.start`")
	}
	if conf.Calendar.Min, err = time.Parse(DateFormat, v.GetString("calendar.min")); err != nil {
		return conf, errors.Wrap(err, "could not understand `calendar.min`")
	}
	if conf.Calendar.Max, err = time.Parse(DateFormat, v.GetString("calendar.max")); err != nil {
		return conf, errors.Wrap(err, "could not understand `calendar.max`")
	}
	switch {
	case conf.Engine != "vsop87" && conf.Engine != "kepler":
		return conf, errors.Errorf("unknown engine '%s' (expected vsop87 or kepler)", conf.Engine)
	case conf.Samples < 2:
		return conf, errors.Errorf("`orbit.samples` must be at least 2, got %d", conf.Samples)
	case !conf.Calendar.Max.After(conf.Calendar.Min):
		return conf, errors.New("`calendar.max` must be after `calendar.min`")
	case conf.DPI <= 0 || conf.Width <= 0 || conf.Height <= 0:
		return conf, errors.New("`render` dimensions must be positive")
	}
	return conf, nil
}

// Kernels returns the full paths of the kernels to load.
func (c Config) Kernels() []string {
	paths := make([]string, len(c.KernelsToLoad))
	for i, k := range c.KernelsToLoad {
		if filepath.IsAbs(k) {
			paths[i] = k
		} else {
			paths[i] = filepath.Join(c.PathValues, k)
		}
	}
	return paths
}

// NewEphemeris loads the kernels listed in the configuration (reloading any
// already loaded) and returns the matching ephemeris.
func (c Config) NewEphemeris(logger kitlog.Logger) (*Ephemeris, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if c.Engine == "kepler" {
		logger.Log("level", "info", "subsys", "ephem", "engine", "kepler")
		return NewEphemeris(KeplerEngine{}, nil), nil
	}
	pool := NewKernelPool(LoadVSOP87Kernel)
	for _, k := range c.Kernels() {
		if err := pool.Load(k, true); err != nil {
			return nil, err
		}
		logger.Log("level", "debug", "subsys", "ephem", "kernel", k, "status", "loaded")
	}
	logger.Log("level", "info", "subsys", "ephem", "engine", "vsop87", "kernels", len(pool.Loaded()))
	return NewEphemeris(NewVSOP87Engine(pool), pool), nil
}

// LoadSolarSystem loads the kernels of the configuration and builds the default bodies.
func LoadSolarSystem(conf Config, logger kitlog.Logger) (*SolarSystem, error) {
	eph, err := conf.NewEphemeris(logger)
	if err != nil {
		return nil, err
	}
	return NewSolarSystem(eph, DefaultBodies(), conf, logger)
}
