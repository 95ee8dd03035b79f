package publisher

import (
	"encoding/json"
	"testing"

	"github.com/tigotap/mesh-bridge/pkg/nodetable"
)

func TestAddressStringKnownAddress(t *testing.T) {
	addr := nodetable.LongAddress{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x00, 0x11}
	got := AddressString(7, addr, true)
	want := "aa:bb:cc:dd:ee:ff:00:11"
	if got != want {
		t.Errorf("AddressString = %q, want %q", got, want)
	}
}

func TestAddressStringUnknownAddress(t *testing.T) {
	got := AddressString(7, nodetable.LongAddress{}, false)
	want := "unknown-7"
	if got != want {
		t.Errorf("AddressString = %q, want %q", got, want)
	}
}

func TestRoundToPlaces(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{40.126, 2, 40.13},
		{8.0004, 3, 8.0},
		{25.04, 1, 25.0},
		{99.995, 2, 100.0},
	}
	for _, c := range cases {
		if got := round(c.v, c.places); got != c.want {
			t.Errorf("round(%v, %d) = %v, want %v", c.v, c.places, got, c.want)
		}
	}
}

func TestRecordMarshalsExpectedFieldNames(t *testing.T) {
	rssi := uint8(123)
	r := Record{
		NodeID: 42, VIN: 40.0, VOUT: 20.0, DUTY: 100.0, AMPSIN: 8.0,
		TEMP: 25.0, RSSI: &rssi, SLOT: 5, POWER: 320.0,
		Address: "aa:bb:cc:dd:ee:ff:00:11", GatewayID: 1, Timestamp: 1700000000,
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{
		"NodeID", "VIN", "VOUT", "DUTY", "AMPSIN", "TEMP", "RSSI",
		"SLOT", "POWER", "Address", "GatewayID", "Timestamp",
	} {
		if _, ok := asMap[field]; !ok {
			t.Errorf("expected field %q in marshaled record", field)
		}
	}
}

func TestRecordOmitsRSSIWhenAbsent(t *testing.T) {
	r := Record{NodeID: 1, Address: "unknown-1"}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := asMap["RSSI"]; ok {
		t.Error("expected RSSI to be omitted when absent")
	}
}
