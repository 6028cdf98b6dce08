// Package instrument implements bytebuffer.Observer to watch how buffers use
// their storage.
//
// Recorder keeps in process hdr histograms of the capacities buffers grow to
// and of the bytes moved by compaction, useful to tune initial capacities.
// Collector exports the same events as prometheus metrics.
//
// Observers in this package are safe for concurrent use, so one of them can
// watch many buffers owned by different goroutines.
package instrument

import "github.com/performancecopilot/bytebuffer"

var (
	_ bytebuffer.Observer = (*Recorder)(nil)
	_ bytebuffer.Observer = (*Collector)(nil)
	_ bytebuffer.Observer = multi(nil)
)

type multi []bytebuffer.Observer

// Multi returns an Observer that notifies all passed observers in order
func Multi(observers ...bytebuffer.Observer) bytebuffer.Observer {
	m := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) Grew(from, to int) {
	for _, o := range m {
		o.Grew(from, to)
	}
}

func (m multi) Compacted(moved int) {
	for _, o := range m {
		o.Compacted(moved)
	}
}
