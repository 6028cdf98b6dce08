package instrument

import (
	"sync"

	"github.com/codahale/hdrhistogram"
)

// MaxTrackedSize is the biggest value the Recorder histograms can hold
const MaxTrackedSize = 1 << 40

// Distribution summarizes one histogram
type Distribution struct {
	Count int64   `yaml:"count"`
	Min   int64   `yaml:"min"`
	Max   int64   `yaml:"max"`
	Mean  float64 `yaml:"mean"`
	P50   int64   `yaml:"p50"`
	P99   int64   `yaml:"p99"`
}

// Snapshot is a point in time copy of what a Recorder has seen
type Snapshot struct {
	Grows       int64        `yaml:"grows"`
	Compactions int64        `yaml:"compactions"`
	Dropped     int64        `yaml:"dropped"`
	Capacity    Distribution `yaml:"capacity"`
	Moved       Distribution `yaml:"moved"`
}

// Recorder records growth and compaction events into hdr histograms
type Recorder struct {
	mu          sync.Mutex
	capacity    *hdrhistogram.Histogram // capacities after growth
	moved       *hdrhistogram.Histogram // bytes moved per compaction
	grows       int64
	compactions int64
	dropped     int64 // values outside the trackable range
}

// NewRecorder creates a new Recorder tracking values with the passed
// number of significant figures, which must be between 1 and 5
func NewRecorder(sigfigs int) *Recorder {
	return &Recorder{
		capacity: hdrhistogram.New(1, MaxTrackedSize, sigfigs),
		moved:    hdrhistogram.New(1, MaxTrackedSize, sigfigs),
	}
}

// Grew records a growth event
func (r *Recorder) Grew(from, to int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grows++
	if err := r.capacity.RecordValue(int64(to)); err != nil {
		r.dropped++
	}
}

// Compacted records a compaction event
func (r *Recorder) Compacted(moved int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.compactions++
	if err := r.moved.RecordValue(int64(moved)); err != nil {
		r.dropped++
	}
}

// Snapshot returns the current state of the Recorder
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		Grows:       r.grows,
		Compactions: r.compactions,
		Dropped:     r.dropped,
		Capacity:    distribution(r.capacity),
		Moved:       distribution(r.moved),
	}
}

// Reset clears everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.capacity.Reset()
	r.moved.Reset()
	r.grows, r.compactions, r.dropped = 0, 0, 0
}

func distribution(h *hdrhistogram.Histogram) Distribution {
	if h.TotalCount() == 0 {
		return Distribution{}
	}

	return Distribution{
		Count: h.TotalCount(),
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		P50:   h.ValueAtQuantile(50),
		P99:   h.ValueAtQuantile(99),
	}
}
