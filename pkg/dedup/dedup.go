// Package dedup suppresses near-duplicate power reports for the same
// gateway/node pair inside a sliding time window.
package dedup

import (
	"math"
	"sync"
	"time"
)

const (
	vinTolerance     = 0.2
	currentTolerance = 0.05
	tempTolerance    = 0.5
)

type key struct {
	gatewayID uint16
	nodeID    uint16
}

type entry struct {
	lastTime    time.Time
	lastSlot    uint16
	lastVIn     float64
	lastCurrent float64
	lastTemp    float64
}

// Sample is the subset of a PowerReport the gate needs to reach a
// publish decision.
type Sample struct {
	GatewayID uint16
	NodeID    uint16
	Slot      uint16
	VIn       float64
	Current   float64
	Temp      float64
}

// Gate is a per-(gateway, node) deduplication policy. A zero Window
// disables suppression entirely: every sample is published.
type Gate struct {
	Window time.Duration

	mu      sync.Mutex
	entries map[key]entry
}

// New returns a Gate with the given sliding window. window <= 0
// disables the gate.
func New(window time.Duration) *Gate {
	return &Gate{Window: window, entries: make(map[key]entry)}
}

// ShouldPublish evaluates the policy for sample at time now, recording
// the sample's state regardless of the decision reached.
func (g *Gate) ShouldPublish(sample Sample, now time.Time) bool {
	if g.Window <= 0 {
		return true
	}

	k := key{gatewayID: sample.GatewayID, nodeID: sample.NodeID}

	g.mu.Lock()
	defer g.mu.Unlock()

	prev, ok := g.entries[k]
	publish := true
	if ok {
		switch {
		case now.Sub(prev.lastTime) >= g.Window || sample.Slot != prev.lastSlot:
			publish = true
		default:
			publish = math.Abs(sample.VIn-prev.lastVIn) >= vinTolerance ||
				math.Abs(sample.Current-prev.lastCurrent) >= currentTolerance ||
				math.Abs(sample.Temp-prev.lastTemp) >= tempTolerance
		}
	}

	g.entries[k] = entry{
		lastTime:    now,
		lastSlot:    sample.Slot,
		lastVIn:     sample.VIn,
		lastCurrent: sample.Current,
		lastTemp:    sample.Temp,
	}

	return publish
}
