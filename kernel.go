package solbirthday

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/soniakeys/meeus/v3/planetposition"
)

// ErrKernelNotLoaded is returned when no loaded kernel covers a requested body.
var ErrKernelNotLoaded = errors.New("kernel not loaded")

// Kernel is one loaded ephemeris data file.
type Kernel struct {
	Path   string
	Body   int // NAIF planet number covered by this kernel
	planet *planetposition.V87Planet
}

// KernelLoader reads a kernel file.
type KernelLoader func(path string) (*Kernel, error)

// vsop87Ext maps VSOP87B file extensions to the planet numbers they cover.
var vsop87Ext = map[string]int{
	"mer": 1, "ven": 2, "ear": 3, "mar": 4, "jup": 5, "sat": 6, "ura": 7, "nep": 8,
}

// LoadVSOP87Kernel loads a VSOP87B planet file (e.g. `VSOP87B.mar`).
func LoadVSOP87Kernel(path string) (*Kernel, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	body, ok := vsop87Ext[ext]
	if !ok {
		return nil, errors.Errorf("%s is not a VSOP87B planet file", path)
	}
	if !strings.HasPrefix(strings.ToUpper(filepath.Base(path)), "VSOP87B.") {
		return nil, errors.Errorf("%s is not a VSOP87B planet file", path)
	}
	planet, err := planetposition.LoadPlanetPath(body-1, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "could not load planet number %d", body)
	}
	return &Kernel{Path: path, Body: body, planet: planet}, nil
}

// KernelPool keeps track of the loaded kernels in load order. A kernel may be
// furnished several times; the latest instance takes precedence.
type KernelPool struct {
	mu      sync.RWMutex
	load    KernelLoader
	kernels []*Kernel
}

// NewKernelPool returns an empty pool which reads files with the provided loader.
func NewKernelPool(load KernelLoader) *KernelPool {
	if load == nil {
		load = LoadVSOP87Kernel
	}
	return &KernelPool{load: load}
}

// Furnish loads the kernel and appends it to the pool, even if already loaded.
func (p *KernelPool) Furnish(path string) error {
	k, err := p.load(path)
	if err != nil {
		return errors.Wrapf(err, "cannot furnish %s", path)
	}
	p.mu.Lock()
	p.kernels = append(p.kernels, k)
	p.mu.Unlock()
	return nil
}

// Load loads a kernel unless it is already loaded. If it is, and reload is
// set, every instance is unloaded and the kernel is loaded again; otherwise
// only the duplicates are removed.
func (p *KernelPool) Load(path string, reload bool) error {
	if !p.IsLoaded(path) {
		return p.Furnish(path)
	}
	if reload {
		p.Remove(path, false)
		return p.Furnish(path)
	}
	p.Remove(path, true)
	return nil
}

// IsLoaded returns whether the kernel is in the pool.
func (p *KernelPool) IsLoaded(path string) bool {
	return p.count(path) > 0
}

// Duplicates returns how many extra instances of the kernel are loaded.
// It is -1 when the kernel is not loaded at all.
func (p *KernelPool) Duplicates(path string) int {
	return p.count(path) - 1
}

func (p *KernelPool) count(path string) (n int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, k := range p.kernels {
		if k.Path == path {
			n++
		}
	}
	return
}

// Remove unloads the kernel. With dupsOnly, the earliest instance is kept.
func (p *KernelPool) Remove(path string, dupsOnly bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.kernels[:0]
	seen := false
	for _, k := range p.kernels {
		if k.Path == path {
			if dupsOnly && !seen {
				seen = true
				kept = append(kept, k)
			}
			continue
		}
		kept = append(kept, k)
	}
	for i := len(kept); i < len(p.kernels); i++ {
		p.kernels[i] = nil
	}
	p.kernels = kept
}

// Clear unloads every kernel.
func (p *KernelPool) Clear() {
	p.mu.Lock()
	p.kernels = nil
	p.mu.Unlock()
}

// Loaded returns the paths of the loaded kernels in load order.
func (p *KernelPool) Loaded() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	paths := make([]string, len(p.kernels))
	for i, k := range p.kernels {
		paths[i] = k.Path
	}
	return paths
}

// forBody returns the most recently loaded kernel covering the planet number.
func (p *KernelPool) forBody(body int) (*Kernel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for i := len(p.kernels) - 1; i >= 0; i-- {
		if p.kernels[i].Body == body {
			return p.kernels[i], nil
		}
	}
	return nil, errors.Wrapf(ErrKernelNotLoaded, "no kernel covers planet number %d", body)
}
