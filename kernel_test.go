package solbirthday

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

var fakeBodies = map[string]int{"mer.bsp": 1, "ear.bsp": 3, "ear2.bsp": 3, "jup.bsp": 5}

func fakePool(loads *int) *KernelPool {
	return NewKernelPool(func(path string) (*Kernel, error) {
		*loads++
		body, ok := fakeBodies[path]
		if !ok {
			return nil, errors.New("corrupted kernel")
		}
		return &Kernel{Path: path, Body: body}, nil
	})
}

func TestKernelPoolLoad(t *testing.T) {
	loads := 0
	pool := fakePool(&loads)
	if pool.IsLoaded("ear.bsp") || pool.Duplicates("ear.bsp") != -1 {
		t.Fatal("empty pool reports a kernel")
	}
	if err := pool.Load("ear.bsp", false); err != nil {
		t.Fatal(err)
	}
	if !pool.IsLoaded("ear.bsp") || pool.Duplicates("ear.bsp") != 0 || loads != 1 {
		t.Fatalf("after load: loaded=%t dups=%d loads=%d", pool.IsLoaded("ear.bsp"), pool.Duplicates("ear.bsp"), loads)
	}
	// Duplicates.
	pool.Furnish("ear.bsp")
	pool.Furnish("ear.bsp")
	if pool.Duplicates("ear.bsp") != 2 {
		t.Fatalf("expected 2 duplicates, got %d", pool.Duplicates("ear.bsp"))
	}
	// Loading without reload only removes the duplicates.
	if err := pool.Load("ear.bsp", false); err != nil {
		t.Fatal(err)
	}
	if pool.Duplicates("ear.bsp") != 0 || loads != 3 {
		t.Fatalf("no reload: dups=%d loads=%d", pool.Duplicates("ear.bsp"), loads)
	}
	// Reloading reads the file again.
	pool.Furnish("ear.bsp")
	if err := pool.Load("ear.bsp", true); err != nil {
		t.Fatal(err)
	}
	if pool.Duplicates("ear.bsp") != 0 || loads != 5 {
		t.Fatalf("reload: dups=%d loads=%d", pool.Duplicates("ear.bsp"), loads)
	}
	if err := pool.Load("nope.bsp", false); err == nil {
		t.Fatal("expected an error for a corrupted kernel")
	}
	if pool.IsLoaded("nope.bsp") {
		t.Fatal("a failed kernel must not be loaded")
	}
}

func TestKernelPoolOrder(t *testing.T) {
	loads := 0
	pool := fakePool(&loads)
	for _, k := range []string{"mer.bsp", "ear.bsp", "jup.bsp", "ear2.bsp"} {
		if err := pool.Load(k, false); err != nil {
			t.Fatal(err)
		}
	}
	loaded := pool.Loaded()
	if len(loaded) != 4 || loaded[0] != "mer.bsp" || loaded[3] != "ear2.bsp" {
		t.Fatalf("unexpected load order %v", loaded)
	}
	// Most recent kernel wins.
	k, err := pool.forBody(3)
	if err != nil || k.Path != "ear2.bsp" {
		t.Fatalf("Earth from %v (%s)", k, err)
	}
	pool.Remove("ear2.bsp", false)
	if k, _ = pool.forBody(3); k.Path != "ear.bsp" {
		t.Fatalf("Earth from %s after removal", k.Path)
	}
	if _, err = pool.forBody(4); errors.Cause(err) != ErrKernelNotLoaded {
		t.Fatalf("expected ErrKernelNotLoaded, got %v", err)
	}
	// Remove keeps the earliest instance with dupsOnly.
	pool.Furnish("mer.bsp")
	pool.Remove("mer.bsp", true)
	if loaded = pool.Loaded(); loaded[0] != "mer.bsp" || pool.Duplicates("mer.bsp") != 0 {
		t.Fatalf("after removing duplicates: %v", loaded)
	}
	pool.Clear()
	if len(pool.Loaded()) != 0 {
		t.Fatal("pool not cleared")
	}
}

func TestLoadVSOP87Kernel(t *testing.T) {
	dir := t.TempDir()
	for _, path := range []string{"VSOP87B.xyz", "VSOP87A.ear", "de430.bsp"} {
		if _, err := LoadVSOP87Kernel(filepath.Join(dir, path)); err == nil {
			t.Fatalf("%s should not be a VSOP87B kernel", path)
		}
	}
	if _, err := LoadVSOP87Kernel(filepath.Join(dir, "VSOP87B.ear")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if NewKernelPool(nil).load == nil {
		t.Fatal("default loader not set")
	}
}
