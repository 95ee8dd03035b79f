package publisher

import (
	"fmt"
	"math"

	"github.com/tigotap/mesh-bridge/pkg/nodetable"
)

// Record is the JSON-shaped payload published for one power report.
type Record struct {
	NodeID    uint16  `json:"NodeID"`
	VIN       float64 `json:"VIN"`
	VOUT      float64 `json:"VOUT"`
	DUTY      float64 `json:"DUTY"`
	AMPSIN    float64 `json:"AMPSIN"`
	TEMP      float64 `json:"TEMP"`
	RSSI      *uint8  `json:"RSSI,omitempty"`
	SLOT      uint16  `json:"SLOT"`
	POWER     float64 `json:"POWER"`
	Address   string  `json:"Address"`
	GatewayID uint16  `json:"GatewayID"`
	Timestamp int64   `json:"Timestamp"`
}

func round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}

// AddressString formats a long address as colon-separated lowercase
// hex, or "unknown-{node_id}" when addr is not yet known.
func AddressString(nodeID uint16, addr nodetable.LongAddress, known bool) string {
	if !known {
		return fmt.Sprintf("unknown-%d", nodeID)
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x:%02x:%02x",
		addr[0], addr[1], addr[2], addr[3], addr[4], addr[5], addr[6], addr[7])
}
