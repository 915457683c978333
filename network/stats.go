package network

import (
	"bufio"
	"fmt"
	"os"
)

// Distribution summarizes a set of uint64 samples: the minimum, maximum,
// and arithmetic mean. An empty input yields the zero Distribution.
type Distribution struct {
	Min uint64
	Max uint64
	Avg float64
}

func newDistribution(values []uint64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += float64(v)
	}
	return Distribution{Min: min, Max: max, Avg: sum / float64(len(values))}
}

func (d Distribution) String() string {
	return fmt.Sprintf("min=%d max=%d avg=%.2f", d.Min, d.Max, d.Avg)
}

// Sample is one tick's recorded snapshot: the instantaneous node/section
// counts alongside the cumulative protocol-event totals up to and including
// this tick.
type Sample struct {
	Iteration   int
	Nodes       int
	Sections    int
	Merges      uint64
	Splits      uint64
	Relocations uint64
	Rejections  uint64
}

func (s Sample) String() string {
	return fmt.Sprintf(
		"Iteration: %8d\nNodes:     %8d\nSections:  %8d\nMerges:    %8d\nSplits:    %8d\nRelocations: %6d\nRejections: %7d",
		s.Iteration, s.Nodes, s.Sections, s.Merges, s.Splits, s.Relocations, s.Rejections,
	)
}

// Stats accumulates one Sample per tick, tracking running totals of every
// protocol event so each Sample carries cumulative counts rather than
// per-tick deltas.
type Stats struct {
	samples []Sample

	totalMerges      uint64
	totalSplits      uint64
	totalRelocations uint64
	totalRejections  uint64
}

func newStats() *Stats {
	return &Stats{}
}

// record folds this tick's event counts into the running totals and appends
// a new Sample carrying the cumulative values.
func (st *Stats) record(iteration, nodes, sections int, merges, splits, relocations, rejections uint64) {
	st.totalMerges += merges
	st.totalSplits += splits
	st.totalRelocations += relocations
	st.totalRejections += rejections

	st.samples = append(st.samples, Sample{
		Iteration:   iteration,
		Nodes:       nodes,
		Sections:    sections,
		Merges:      st.totalMerges,
		Splits:      st.totalSplits,
		Relocations: st.totalRelocations,
		Rejections:  st.totalRejections,
	})
}

// Samples returns every recorded sample, in tick order.
func (st *Stats) Samples() []Sample { return st.samples }

// Summary returns the most recently recorded sample, or the zero Sample if
// none has been recorded yet.
func (st *Stats) Summary() Sample {
	if len(st.samples) == 0 {
		return Sample{}
	}
	return st.samples[len(st.samples)-1]
}

// WriteToFile writes one space-separated line per recorded sample:
// "iteration nodes sections cumulative_merges cumulative_splits
// cumulative_relocations cumulative_rejections", in that column order.
func (st *Stats) WriteToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("network: creating stats file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range st.samples {
		if _, err := fmt.Fprintf(w, "%d %d %d %d %d %d %d\n",
			s.Iteration, s.Nodes, s.Sections, s.Merges, s.Splits, s.Relocations, s.Rejections); err != nil {
			return fmt.Errorf("network: writing stats file %s: %w", path, err)
		}
	}
	return w.Flush()
}
