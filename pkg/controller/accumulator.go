package controller

import (
	"sync"

	"github.com/vantage-controls/vantage-go/pkg/interfaces"
)

type colorKey struct {
	vid  int
	kind string
}

// ColorAccumulator assembles colors reported one channel per status event.
// Partial colors are keyed by vid and color kind.
type ColorAccumulator struct {
	mu      sync.Mutex
	partial map[colorKey][]int
}

// NewColorAccumulator creates an empty accumulator.
func NewColorAccumulator() *ColorAccumulator {
	return &ColorAccumulator{partial: make(map[colorKey][]int)}
}

// Add records one channel of a color with n channels. When the last
// channel (n-1) arrives the assembled color is returned and the partial
// state is cleared; channels never reported are zero. Channels outside
// [0, n) are dropped.
func (a *ColorAccumulator) Add(vid int, kind string, n int, ch interfaces.ColorChannel) ([]int, bool) {
	if ch.Channel < 0 || ch.Channel >= n {
		return nil, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := colorKey{vid: vid, kind: kind}
	color, ok := a.partial[key]
	if !ok || len(color) != n {
		color = make([]int, n)
		a.partial[key] = color
	}
	color[ch.Channel] = ch.Value

	if ch.Channel != n-1 {
		return nil, false
	}
	delete(a.partial, key)
	return color, true
}

// Pending returns the number of colors still being assembled.
func (a *ColorAccumulator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.partial)
}

// Reset drops all partial colors.
func (a *ColorAccumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.partial)
}
