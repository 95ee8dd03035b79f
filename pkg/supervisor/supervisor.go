// Package supervisor wires the decode pipeline together: transport,
// frame decoder, classifier, receive-response parser, packet
// handlers, node table, dedup gate, and publisher.
package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/tigotap/mesh-bridge/pkg/dedup"
	"github.com/tigotap/mesh-bridge/pkg/frame"
	"github.com/tigotap/mesh-bridge/pkg/nodetable"
	"github.com/tigotap/mesh-bridge/pkg/protocol"
	"github.com/tigotap/mesh-bridge/pkg/transport"
)

// Logger is the diagnostics surface every pipeline stage logs
// through.
type Logger interface {
	Warnf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Publisher emits a decoded power report. Implemented by
// *publisher.MQTTPublisher in production.
type Publisher interface {
	Publish(report protocol.PowerReport, addr nodetable.LongAddress, addrKnown bool, now time.Time)
	Close()
}

// Supervisor owns every pipeline component and drives the read loop.
type Supervisor struct {
	transport transport.Transport
	decoder   *frame.Decoder
	nodeTable *nodetable.Table
	dedup     *dedup.Gate
	publisher Publisher
	log       Logger
	now       func() time.Time
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// New builds a Supervisor. now defaults to time.Now when nil; tests
// inject a fixed or stepped clock.
func New(tr transport.Transport, nodeTable *nodetable.Table, dedupGate *dedup.Gate, pub Publisher, logger Logger, now func() time.Time) *Supervisor {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = nopLogger{}
	}
	s := &Supervisor{
		transport: tr,
		nodeTable: nodeTable,
		dedup:     dedupGate,
		publisher: pub,
		log:       logger,
		now:       now,
	}
	s.decoder = frame.New(s.handleFrame, logger)
	return s
}

// Run drives the read loop until ctx is cancelled or the transport
// returns a fatal error. A transport read timeout is not fatal: the
// loop yields for about 10ms and iterates again.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		data, err := s.transport.Read(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) || errors.Is(err, context.Canceled) {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(10 * time.Millisecond):
				}
				continue
			}
			return err
		}

		s.decoder.Feed(data)
	}
}

// handleFrame is the decoder's frame sink: classify, then dispatch
// RECEIVE_RESPONSE payloads to the embedded-packet walk.
func (s *Supervisor) handleFrame(body []byte) {
	f, ok := protocol.Classify(body)
	if !ok {
		return
	}
	if !f.FromGateway {
		return
	}
	if f.EnvelopeType != protocol.ReceiveResponse {
		return
	}

	protocol.ParseReceiveResponse(f.Payload, func(p protocol.EmbeddedPacket) {
		s.handlePacket(f.GatewayID, p)
	}, s.log)
}

func (s *Supervisor) handlePacket(gatewayID uint16, p protocol.EmbeddedPacket) {
	switch p.Type {
	case protocol.PacketPowerReport:
		s.handlePowerReport(gatewayID, p)
	case protocol.PacketTopologyReport:
		s.handleTopologyReport(p)
	default:
		// Skip handler: data_length bytes were already consumed by the
		// parser; no further action for unrecognized packet types.
	}
}

func (s *Supervisor) handlePowerReport(gatewayID uint16, p protocol.EmbeddedPacket) {
	report, ok := protocol.DecodePowerReport(p.NodeID, gatewayID, p.Data, s.log)
	if !ok {
		return
	}

	now := s.now()
	sample := dedup.Sample{
		GatewayID: gatewayID,
		NodeID:    report.NodeID,
		Slot:      report.Slot,
		VIn:       report.VIn,
		Current:   report.CurrentIn,
		Temp:      report.Temperature,
	}
	if !s.dedup.ShouldPublish(sample, now) {
		return
	}

	addr, known := s.nodeTable.Lookup(report.NodeID)
	s.publisher.Publish(report, addr, known, now)
}

func (s *Supervisor) handleTopologyReport(p protocol.EmbeddedPacket) {
	addrBytes, ok := protocol.DecodeTopologyReport(p.Data)
	if !ok {
		return
	}
	s.log.Infof("topology report: node %d -> %x", p.NodeID, addrBytes)
	s.nodeTable.Update(p.NodeID, nodetable.LongAddress(addrBytes))
}

// Close tears down the publisher and transport.
func (s *Supervisor) Close() error {
	s.publisher.Close()
	return s.transport.Close()
}
