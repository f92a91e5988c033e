// Package latency turns the shape of a unit of work into a simulated wait so
// benchmark timings resemble a backend doing real I/O.
package latency

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Sleeper suspends the calling goroutine. time.Sleep in production.
type Sleeper func(time.Duration)

type Model struct {
	scale float64
	sleep Sleeper

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Model)

// WithScale multiplies every delay. Zero disables delays entirely.
func WithScale(scale float64) Option {
	return func(m *Model) {
		if scale >= 0 {
			m.scale = scale
		}
	}
}

func WithSleeper(sleep Sleeper) Option {
	return func(m *Model) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// WithSeed makes jitter draws reproducible.
func WithSeed(seed uint64) Option {
	return func(m *Model) {
		m.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func New(opts ...Option) *Model {
	m := &Model{
		scale: 1,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Disabled returns a model whose delays are all zero.
func Disabled() *Model {
	return New(WithScale(0))
}

// Jitter draws baseMs + U(-v, +v) where v = baseMs*variancePercent/100, clamped at 0.
func (m *Model) Jitter(baseMs, variancePercent float64) time.Duration {
	variance := baseMs * variancePercent / 100
	ms := baseMs + (m.draw()*variance*2 - variance)
	return m.scaled(ms)
}

// Scaled is baseMs + size*msPerItem. Negative sizes count as zero.
func (m *Model) Scaled(size int, msPerItem, baseMs float64) time.Duration {
	if size < 0 {
		size = 0
	}
	return m.scaled(baseMs + float64(size)*msPerItem)
}

// JitteredDelay models a fixed-cost operation with noise.
func (m *Model) JitteredDelay(baseMs, variancePercent float64) {
	m.wait(m.Jitter(baseMs, variancePercent))
}

// ScaledDelay models an operation whose cost grows with the number of
// entities materialized; pass 1 for single-entity results.
func (m *Model) ScaledDelay(size int, msPerItem, baseMs float64) {
	m.wait(m.Scaled(size, msPerItem, baseMs))
}

func (m *Model) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	m.sleep(d)
}

func (m *Model) scaled(ms float64) time.Duration {
	ms *= m.scale
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func (m *Model) draw() float64 {
	if m.rnd == nil {
		return rand.Float64()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rnd.Float64()
}
