package httpapi

import (
	"math"
	"sync"
	"time"
)

const latencyWindow = 100

// latencyStats keeps a request counter and the most recent latencies.
type latencyStats struct {
	mu      sync.Mutex
	total   int64
	samples [latencyWindow]time.Duration
	next    int
	filled  int
}

func (l *latencyStats) observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total++
	l.samples[l.next] = d
	l.next = (l.next + 1) % latencyWindow
	if l.filled < latencyWindow {
		l.filled++
	}
}

// snapshot returns the request count and the average latency in seconds,
// rounded to four places.
func (l *latencyStats) snapshot() (int64, float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.filled == 0 {
		return l.total, 0
	}
	var sum time.Duration
	for i := 0; i < l.filled; i++ {
		sum += l.samples[i]
	}
	avg := sum.Seconds() / float64(l.filled)
	return l.total, math.Round(avg*10000) / 10000
}
