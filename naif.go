package solbirthday

import (
	"strings"

	"github.com/pkg/errors"
)

// NAIF integer codes used by the solar system.
const (
	SSB     = 0
	SunID   = 10
	MoonID  = 301
	EarthID = 399
)

var naifNames = map[int]string{
	0:   "SOLAR SYSTEM BARYCENTER",
	1:   "MERCURY BARYCENTER",
	2:   "VENUS BARYCENTER",
	3:   "EARTH BARYCENTER",
	4:   "MARS BARYCENTER",
	5:   "JUPITER BARYCENTER",
	6:   "SATURN BARYCENTER",
	7:   "URANUS BARYCENTER",
	8:   "NEPTUNE BARYCENTER",
	9:   "PLUTO BARYCENTER",
	10:  "SUN",
	199: "MERCURY",
	299: "VENUS",
	301: "MOON",
	399: "EARTH",
	499: "MARS",
	599: "JUPITER",
	699: "SATURN",
	799: "URANUS",
	899: "NEPTUNE",
	999: "PLUTO",
}

var naifAliases = map[string]int{
	"SSB":                   0,
	"EARTH-MOON BARYCENTER": 3,
	"EMB":                   3,
	"SOL":                   10,
}

// ErrUnknownBody is returned when a NAIF name or code is not known.
var ErrUnknownBody = errors.New("unknown NAIF body")

// NAIFID returns the NAIF integer code of a body name (case insensitive).
func NAIFID(name string) (int, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for id, n := range naifNames {
		if n == name {
			return id, nil
		}
	}
	if id, ok := naifAliases[name]; ok {
		return id, nil
	}
	return 0, errors.Wrapf(ErrUnknownBody, "invalid NAIF name '%s'", name)
}

// NAIFName returns the NAIF name of a body code.
func NAIFName(id int) (string, error) {
	if n, ok := naifNames[id]; ok {
		return n, nil
	}
	return "", errors.Wrapf(ErrUnknownBody, "invalid NAIF id %d", id)
}

// planetIndex returns the planet number (1 for Mercury to 9 for Pluto) of a
// planet or planet barycenter code, or 0 if the code is neither.
func planetIndex(id int) int {
	switch {
	case id >= 1 && id <= 9:
		return id
	case id >= 199 && id <= 999 && id%100 == 99:
		return id / 100
	default:
		return 0
	}
}
