// Package signature proves that a payment confirmation was issued by the
// gateway for a specific gateway order. It is the sole authority for
// "was this payment real" and must only ever run server-side: the shared
// secret must never reach a client.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA256 of "orderID|paymentID" with the shared
// secret. This matches what the gateway sends alongside a completed payment.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a supplied signature against the expected one in constant
// time. It fails closed: empty fields, malformed hex or any mismatch all
// return false.
func Verify(orderID, paymentID, sig, secret string) bool {
	if orderID == "" || paymentID == "" || sig == "" || secret == "" {
		return false
	}

	supplied, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hmac.Equal(supplied, mac.Sum(nil))
}
