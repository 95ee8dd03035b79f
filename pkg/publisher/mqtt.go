// Package publisher composes and emits structured power-report
// records over MQTT.
package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tigotap/mesh-bridge/pkg/nodetable"
	"github.com/tigotap/mesh-bridge/pkg/protocol"
)

// Logger is the minimal diagnostics surface the publisher needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Config holds the MQTT connection settings plus topic prefix.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	Prefix   string
}

// MQTTPublisher publishes power reports to an MQTT broker, one topic
// per node long address.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	log    Logger
}

// Connect dials the broker with up to 5 attempts at 5s intervals and
// returns an error once all of them have failed.
func Connect(cfg Config, logger Logger) (*MQTTPublisher, error) {
	if logger == nil {
		logger = nopLogger{}
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Server, cfg.Port))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false) // the explicit retry loop below owns retry policy

	client := mqtt.NewClient(opts)

	const maxAttempts = 5
	const retryInterval = 5 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token := client.Connect()
		if token.WaitTimeout(retryInterval) && token.Error() == nil {
			logger.Infof("mqtt connected to %s:%d (attempt %d)", cfg.Server, cfg.Port, attempt)
			return &MQTTPublisher{client: client, prefix: cfg.Prefix, log: logger}, nil
		}
		lastErr = token.Error()
		logger.Errorf("mqtt connect attempt %d/%d failed: %v", attempt, maxAttempts, lastErr)
		if attempt < maxAttempts {
			time.Sleep(retryInterval)
		}
	}
	return nil, fmt.Errorf("mqtt connect exhausted %d attempts: %w", maxAttempts, lastErr)
}

// Publish composes the topic and JSON payload for report and emits it
// with QoS 0 and retain=true. Errors are logged and dropped; they
// never propagate to the decode pipeline.
func (p *MQTTPublisher) Publish(report protocol.PowerReport, addr nodetable.LongAddress, addrKnown bool, now time.Time) {
	record := Record{
		NodeID:    report.NodeID,
		VIN:       round(report.VIn, 2),
		VOUT:      round(report.VOut, 2),
		DUTY:      round(report.DutyCycle, 2),
		AMPSIN:    round(report.CurrentIn, 3),
		TEMP:      round(report.Temperature, 1),
		RSSI:      report.RSSI,
		SLOT:      report.Slot,
		POWER:     round(report.Power(), 2),
		Address:   AddressString(report.NodeID, addr, addrKnown),
		GatewayID: report.GatewayID,
		Timestamp: now.Unix(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		p.log.Errorf("marshal power report for node %d: %v", report.NodeID, err)
		return
	}

	topic := fmt.Sprintf("%s/%s", p.prefix, record.Address)
	token := p.client.Publish(topic, 0, true, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		p.log.Errorf("publish to %s failed: %v", topic, token.Error())
	}
}

// Close stops the client's network loop and disconnects cleanly.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
