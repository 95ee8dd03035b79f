package protocol

import "encoding/binary"

// PowerReport is decoded optimizer telemetry: input/output voltage,
// duty cycle, input current, temperature, and the slot it was received in.
type PowerReport struct {
	NodeID      uint16
	GatewayID   uint16
	VIn         float64
	VOut        float64
	DutyCycle   float64
	CurrentIn   float64
	Temperature float64
	Slot        uint16
	RSSI        *uint8
}

// Power returns the derived instantaneous power in watts.
func (p PowerReport) Power() float64 {
	return p.VIn * p.CurrentIn
}

// DecodePowerReport unpacks the bit-packed fixed-point fields of a
// POWER_REPORT packet. Data shorter than 12 bytes is rejected.
func DecodePowerReport(nodeID, gatewayID uint16, data []byte, logger Logger) (PowerReport, bool) {
	if logger == nil {
		logger = nopLogger{}
	}
	if len(data) < 12 {
		logger.Warnf("power report for node %d too short: %d bytes", nodeID, len(data))
		return PowerReport{}, false
	}

	vinRaw := uint16(data[0])<<4 | uint16(data[1]&0xF0)>>4
	voutRaw := uint16(data[1]&0x0F)<<8 | uint16(data[2])
	curRaw := uint16(data[4])<<4 | uint16(data[5]&0xF0)>>4
	tempRaw := uint16(data[5]&0x0F)<<8 | uint16(data[6])

	report := PowerReport{
		NodeID:      nodeID,
		GatewayID:   gatewayID,
		VIn:         float64(vinRaw) * 0.05,
		VOut:        float64(voutRaw) * 0.10,
		DutyCycle:   float64(data[3]) * (100.0 / 255.0),
		CurrentIn:   float64(curRaw) * 0.005,
		Temperature: float64(tempRaw) * 0.1,
		Slot:        binary.BigEndian.Uint16(data[10:12]),
	}
	if len(data) >= 13 {
		rssi := data[12]
		report.RSSI = &rssi
	}
	return report, true
}
