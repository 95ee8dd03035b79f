package dedup

import (
	"testing"
	"time"
)

func sample(gw, node, slot uint16, vin, cur, temp float64) Sample {
	return Sample{GatewayID: gw, NodeID: node, Slot: slot, VIn: vin, Current: cur, Temp: temp}
}

func TestFirstReportAlwaysPublishes(t *testing.T) {
	g := New(5 * time.Second)
	now := time.Unix(1000, 0)
	if !g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), now) {
		t.Fatal("expected first report for a key to publish")
	}
}

func TestIdenticalSampleWithinWindowIsSuppressed(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	if !g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base) {
		t.Fatal("first sample should publish")
	}
	if g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base.Add(time.Second)) {
		t.Fatal("identical sample within window should be suppressed")
	}
}

func TestSlotChangeAlwaysPublishes(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	if !g.ShouldPublish(sample(1, 1, 2, 40.0, 8.0, 25.0), base.Add(time.Millisecond)) {
		t.Fatal("a slot change must always publish, regardless of elapsed time or value delta")
	}
}

func TestWindowElapsedAlwaysPublishes(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	if !g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base.Add(6*time.Second)) {
		t.Fatal("once the window has elapsed, even an identical sample must publish")
	}
}

func TestValueDeltaAboveToleranceWithinWindowStillPublishes(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	if !g.ShouldPublish(sample(1, 1, 1, 40.3, 8.0, 25.0), base.Add(time.Second)) {
		t.Fatal("a v_in delta >= 0.2 within the window must still publish")
	}
}

func TestValueDeltaBelowToleranceWithinWindowIsSuppressed(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	if g.ShouldPublish(sample(1, 1, 1, 40.05, 8.02, 25.1), base.Add(time.Second)) {
		t.Fatal("deltas below all three tolerances within the window should be suppressed")
	}
}

func TestZeroWindowDisablesGateEntirely(t *testing.T) {
	g := New(0)
	base := time.Unix(1000, 0)
	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	if !g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base) {
		t.Fatal("a zero window must disable suppression entirely")
	}
}

func TestSuppressedSampleStillUpdatesStoredState(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	// Suppressed: same slot, within window, v_in delta 0.15 is below
	// tolerance.
	if g.ShouldPublish(sample(1, 1, 1, 39.85, 8.0, 25.0), base.Add(time.Second)) {
		t.Fatal("expected suppression")
	}
	// 40.1 is 0.25 from the *second* sample's v_in but only 0.1 from the
	// first's, so it publishes only if the suppressed sample's state was
	// recorded.
	if !g.ShouldPublish(sample(1, 1, 1, 40.1, 8.0, 25.0), base.Add(2*time.Second)) {
		t.Fatal("expected publish once delta crosses tolerance relative to the last recorded (suppressed) sample")
	}
}

func TestDifferentKeysAreIndependent(t *testing.T) {
	g := New(5 * time.Second)
	base := time.Unix(1000, 0)

	g.ShouldPublish(sample(1, 1, 1, 40.0, 8.0, 25.0), base)
	if !g.ShouldPublish(sample(1, 2, 1, 40.0, 8.0, 25.0), base) {
		t.Fatal("a different node_id must publish independently")
	}
	if !g.ShouldPublish(sample(2, 1, 1, 40.0, 8.0, 25.0), base) {
		t.Fatal("a different gateway_id must publish independently")
	}
}
