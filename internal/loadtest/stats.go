package loadtest

import (
	"fmt"
	"io"
	"slices"
	"time"
)

type Stats struct {
	Requests       int64
	Non2xx         int64
	Errors         int64
	Avg            time.Duration
	Min            time.Duration
	Max            time.Duration
	P50            time.Duration
	P90            time.Duration
	P99            time.Duration
	RequestsPerSec float64
	ThroughputMBs  float64
}

func Summarize(r *Result) Stats {
	s := Stats{
		Requests: r.Requests,
		Non2xx:   r.Non2xx,
		Errors:   r.Errors,
	}
	if secs := r.Elapsed.Seconds(); secs > 0 {
		s.RequestsPerSec = float64(r.Requests) / secs
		s.ThroughputMBs = float64(r.Bytes) / (1024 * 1024) / secs
	}
	if len(r.Latencies) == 0 {
		return s
	}

	sorted := slices.Clone(r.Latencies)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	s.Avg = total / time.Duration(len(sorted))
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P50 = percentile(sorted, 50)
	s.P90 = percentile(sorted, 90)
	s.P99 = percentile(sorted, 99)
	return s
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (s Stats) Report(w io.Writer) {
	fmt.Fprintln(w, "Latency (ms):")
	fmt.Fprintf(w, "  Avg: %.2f\n", ms(s.Avg))
	fmt.Fprintf(w, "  Min: %.2f\n", ms(s.Min))
	fmt.Fprintf(w, "  Max: %.2f\n", ms(s.Max))
	fmt.Fprintf(w, "  p50: %.2f\n", ms(s.P50))
	fmt.Fprintf(w, "  p90: %.2f\n", ms(s.P90))
	fmt.Fprintf(w, "  p99: %.2f\n", ms(s.P99))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Requests:     %d\n", s.Requests)
	fmt.Fprintf(w, "Requests/sec: %.2f\n", s.RequestsPerSec)
	fmt.Fprintf(w, "Throughput:   %.2f MB/s\n", s.ThroughputMBs)
	if s.Non2xx > 0 {
		fmt.Fprintf(w, "Non-2xx responses: %d\n", s.Non2xx)
	}
	if s.Errors > 0 {
		fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	}
}
