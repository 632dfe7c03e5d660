package payos

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSignPairsDeterministic(t *testing.T) {
	fields := map[string]string{
		"orderCode": "42",
		"amount":    "300",
		"reference": "ref-42",
	}

	first := SignPairs(fields, "secret")
	second := SignPairs(fields, "secret")
	if first != second {
		t.Fatalf("signature not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d chars", len(first))
	}

	if SignPairs(fields, "other-secret") == first {
		t.Fatal("different keys must produce different signatures")
	}
}

func TestVerifySignature(t *testing.T) {
	fields := map[string]string{"orderCode": "7", "amount": "100"}
	sig := SignPairs(fields, "secret")

	if !VerifySignature(fields, sig, "secret") {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature(fields, sig, "wrong") {
		t.Fatal("signature accepted with wrong key")
	}
	if VerifySignature(fields, "deadbeef", "secret") {
		t.Fatal("garbage signature accepted")
	}
	if VerifySignature(fields, "", "secret") {
		t.Fatal("empty signature accepted")
	}
	if VerifySignature(fields, sig, "") {
		t.Fatal("empty key accepted")
	}

	fields["amount"] = "101"
	if VerifySignature(fields, sig, "secret") {
		t.Fatal("tampered fields accepted")
	}
}

func TestVerifyWebhookRoundTrip(t *testing.T) {
	payload, err := BuildWebhookPayload(1001, 300000, true, "checksum-key")
	if err != nil {
		t.Fatalf("build payload failed: %v", err)
	}

	event, err := VerifyWebhook(payload, "checksum-key")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if event.OrderCode != 1001 || event.Amount != 300000 || !event.Success {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestVerifyWebhookRejectsBadSignature(t *testing.T) {
	payload, err := BuildWebhookPayload(1001, 300000, true, "checksum-key")
	if err != nil {
		t.Fatalf("build payload failed: %v", err)
	}

	if _, err := VerifyWebhook(payload, "different-key"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyWebhookRejectsTamperedAmount(t *testing.T) {
	payload, err := BuildWebhookPayload(1001, 300000, true, "checksum-key")
	if err != nil {
		t.Fatalf("build payload failed: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	body["data"].(map[string]interface{})["amount"] = float64(1)
	tampered, _ := json.Marshal(body)

	if _, err := VerifyWebhook(tampered, "checksum-key"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for tampered payload, got %v", err)
	}
}

func TestVerifyWebhookFailureEvent(t *testing.T) {
	payload, err := BuildWebhookPayload(1002, 50000, false, "checksum-key")
	if err != nil {
		t.Fatalf("build payload failed: %v", err)
	}

	event, err := VerifyWebhook(payload, "checksum-key")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if event.Success {
		t.Fatal("failure event reported as success")
	}
}
