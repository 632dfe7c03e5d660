package payos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// SignPairs builds the canonical "k1=v1&k2=v2" string over the given fields,
// keys sorted alphabetically, and returns its HMAC-SHA256 hex digest.
func SignPairs(fields map[string]string, checksumKey string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, fields[k]))
	}

	h := hmac.New(sha256.New, []byte(checksumKey))
	h.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature compares a received hex signature against the expected
// digest for the fields. Comparison is constant-time.
func VerifySignature(fields map[string]string, signature, checksumKey string) bool {
	if checksumKey == "" || signature == "" {
		return false
	}

	expected := SignPairs(fields, checksumKey)

	given, err := hex.DecodeString(strings.TrimSpace(strings.ToLower(signature)))
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	return hmac.Equal(given, want)
}
