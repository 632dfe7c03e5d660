package payos

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookEvent is the verified payload of a PayOS webhook delivery.
type WebhookEvent struct {
	OrderCode int64
	Amount    int64
	Success   bool
	Code      string
	Desc      string
	Reference string
}

type webhookBody struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type webhookData struct {
	OrderCode int64  `json:"orderCode"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
	Code      string `json:"code"`
	Desc      string `json:"desc"`
}

// VerifyWebhook parses a raw webhook body and checks its signature
// against the checksum key. It must be called before any state change;
// a signature mismatch returns ErrInvalidSignature.
func VerifyWebhook(payload []byte, checksumKey string) (*WebhookEvent, error) {
	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("webhook payload missing data")
	}

	// The signature covers the data object's scalar fields, canonicalized
	// as sorted key=value pairs.
	var rawFields map[string]json.RawMessage
	if err := json.Unmarshal(body.Data, &rawFields); err != nil {
		return nil, fmt.Errorf("malformed webhook data: %w", err)
	}
	fields := make(map[string]string, len(rawFields))
	for k, v := range rawFields {
		fields[k] = canonicalValue(v)
	}

	if !VerifySignature(fields, body.Signature, checksumKey) {
		return nil, ErrInvalidSignature
	}

	var data webhookData
	if err := json.Unmarshal(body.Data, &data); err != nil {
		return nil, fmt.Errorf("malformed webhook data: %w", err)
	}
	if data.OrderCode <= 0 {
		return nil, fmt.Errorf("webhook data missing orderCode")
	}

	return &WebhookEvent{
		OrderCode: data.OrderCode,
		Amount:    data.Amount,
		Success:   body.Success && body.Code == "00",
		Code:      body.Code,
		Desc:      body.Desc,
		Reference: data.Reference,
	}, nil
}

// canonicalValue renders a JSON scalar the way it is signed: strings
// unquoted, numbers and booleans as written, null as the empty string.
func canonicalValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	v := string(raw)
	if v == "null" {
		return ""
	}
	return v
}

// BuildWebhookPayload assembles and signs a webhook body. Used by tests
// and by the sandbox replay tool; production payloads come from PayOS.
func BuildWebhookPayload(orderCode, amount int64, success bool, checksumKey string) ([]byte, error) {
	code := "00"
	desc := "success"
	if !success {
		code = "01"
		desc = "failed"
	}

	fields := map[string]string{
		"orderCode": strconv.FormatInt(orderCode, 10),
		"amount":    strconv.FormatInt(amount, 10),
		"reference": fmt.Sprintf("ref-%d", orderCode),
		"code":      code,
		"desc":      desc,
	}
	signature := SignPairs(fields, checksumKey)

	body := map[string]interface{}{
		"code":    code,
		"desc":    desc,
		"success": success,
		"data": map[string]interface{}{
			"orderCode": orderCode,
			"amount":    amount,
			"reference": fields["reference"],
			"code":      code,
			"desc":      desc,
		},
		"signature": signature,
	}
	return json.Marshal(body)
}
