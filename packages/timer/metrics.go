package timer

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	histogramMin = 1          // 1µs
	histogramMax = 60_000_000 // 60s
)

// Metrics aggregates round-trip latencies across a run. The engine is
// strictly sequential, so no locking is needed.
type Metrics struct {
	histogram *hdrhistogram.Histogram
}

func newMetrics() *Metrics {
	// 1µs to 60s range, 3 significant digits
	return &Metrics{histogram: hdrhistogram.New(histogramMin, histogramMax, 3)}
}

// Record adds one exchange duration to the histogram.
func (m *Metrics) Record(d time.Duration) {
	us := d.Microseconds()
	if us < histogramMin {
		us = histogramMin
	}
	if us > histogramMax {
		us = histogramMax
	}
	_ = m.histogram.RecordValue(us)
}

// Summary holds latency statistics over a run's recorded exchanges.
type Summary struct {
	Count int64
	Min   time.Duration
	Mean  time.Duration
	Max   time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// Summary computes the current statistics. A run with no recorded
// exchanges yields the zero Summary.
func (m *Metrics) Summary() Summary {
	h := m.histogram
	if h.TotalCount() == 0 {
		return Summary{}
	}
	us := func(v int64) time.Duration {
		return time.Duration(v) * time.Microsecond
	}
	return Summary{
		Count: h.TotalCount(),
		Min:   us(h.Min()),
		Mean:  time.Duration(h.Mean() * float64(time.Microsecond)),
		Max:   us(h.Max()),
		P50:   us(h.ValueAtQuantile(50)),
		P95:   us(h.ValueAtQuantile(95)),
		P99:   us(h.ValueAtQuantile(99)),
	}
}
