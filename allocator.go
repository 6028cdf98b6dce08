package bytebuffer

import (
	"io/ioutil"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Allocator is the storage service behind every buffer that outgrows its
// inline array. Allocate hands out a contiguous region of exactly size bytes
// and Release gives it back. A Buffer calls Release exactly once for every
// region it got from Allocate.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Release(region []byte) error
}

// HeapAllocator allocates storage on the go heap
type HeapAllocator struct{}

// Allocate returns a new zeroed byte slice of the passed size
func (HeapAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, rangeErrorf("negative allocation size %d", size)
	}
	return make([]byte, size), nil
}

// Release is a no-op, the garbage collector takes care of heap regions
func (HeapAllocator) Release([]byte) error { return nil }

// MmapAllocator allocates storage as memory mappings.
//
// With an empty Dir every region is an anonymous private mapping, otherwise
// every region is backed by its own file created inside Dir, mapped shared,
// and removed again on Release.
type MmapAllocator struct {
	Dir string

	mu      sync.Mutex
	regions map[*byte]mapping
}

type mapping struct {
	m   mmap.MMap
	loc string // location of the backing file, empty for anonymous mappings
}

// Allocate maps a new region of the passed size
func (a *MmapAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, rangeErrorf("mapping requires a positive size, got %d", size)
	}

	var (
		m   mmap.MMap
		loc string
		err error
	)

	if a.Dir == "" {
		m, err = mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
		if err != nil {
			return nil, errors.Wrap(err, "anonymous mapping failed")
		}
	} else {
		m, loc, err = a.mapFile(size)
		if err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	if a.regions == nil {
		a.regions = make(map[*byte]mapping)
	}
	a.regions[&m[0]] = mapping{m, loc}
	a.mu.Unlock()

	if logging {
		logger.Debug("mapped region",
			zap.String("module", "allocator"),
			zap.Int("size", size),
			zap.String("location", loc),
		)
	}

	return []byte(m), nil
}

func (a *MmapAllocator) mapFile(size int) (mmap.MMap, string, error) {
	if err := os.MkdirAll(a.Dir, 0700); err != nil {
		return nil, "", errors.Wrap(err, "cannot create mapping directory")
	}

	f, err := ioutil.TempFile(a.Dir, "bytebuffer-")
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot create mapping file")
	}
	defer f.Close()

	loc := f.Name()
	if err = f.Truncate(int64(size)); err != nil {
		os.Remove(loc)
		return nil, "", errors.Wrapf(err, "could not initialize %d bytes", size)
	}

	m, err := mmap.MapRegion(f, size, mmap.RDWR, 0, 0)
	if err != nil {
		os.Remove(loc)
		return nil, "", errors.Wrapf(err, "cannot map %v", loc)
	}

	return m, loc, nil
}

// Release unmaps a region returned by Allocate, removing its backing file if any
func (a *MmapAllocator) Release(region []byte) error {
	if len(region) == 0 {
		return nil
	}

	a.mu.Lock()
	r, ok := a.regions[&region[0]]
	delete(a.regions, &region[0])
	a.mu.Unlock()

	if !ok {
		return errors.New("releasing a region that was not allocated by this allocator")
	}

	if err := r.m.Unmap(); err != nil {
		return errors.Wrap(err, "unmap failed")
	}

	if r.loc != "" {
		if err := os.Remove(r.loc); err != nil {
			return errors.Wrapf(err, "cannot remove %v", r.loc)
		}
	}

	return nil
}

// Mapped returns the number of regions currently mapped by the allocator
func (a *MmapAllocator) Mapped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.regions)
}
