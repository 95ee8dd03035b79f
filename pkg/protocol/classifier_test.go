package protocol

import "testing"

func TestClassifyFromGateway(t *testing.T) {
	body := []byte{0x80, 0x01, 0x01, 0x49, 0xAA, 0xBB}
	f, ok := Classify(body)
	if !ok {
		t.Fatal("expected ok")
	}
	if !f.FromGateway {
		t.Error("expected FromGateway true")
	}
	if f.GatewayID != 1 {
		t.Errorf("GatewayID = %d, want 1", f.GatewayID)
	}
	if f.EnvelopeType != ReceiveResponse {
		t.Errorf("EnvelopeType = %v, want RECEIVE_RESPONSE", f.EnvelopeType)
	}
	if string(f.Payload) != "\xAA\xBB" {
		t.Errorf("Payload = %x", f.Payload)
	}
}

func TestClassifyToGateway(t *testing.T) {
	body := []byte{0x00, 0x01, 0x0B, 0x01}
	f, ok := Classify(body)
	if !ok {
		t.Fatal("expected ok")
	}
	if f.FromGateway {
		t.Error("expected FromGateway false")
	}
}

func TestClassifyTooShort(t *testing.T) {
	if _, ok := Classify([]byte{0x01, 0x02, 0x03}); ok {
		t.Fatal("expected ok=false for short body")
	}
}
