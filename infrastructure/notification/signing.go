package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signature headers set on signed deliveries.
const (
	HeaderSignature = "X-Pitchroom-Signature"
	HeaderTimestamp = "X-Pitchroom-Timestamp"
)

// Sign returns "sha256=<hex>" for the payload prefixed with the unix
// timestamp, so a captured body cannot be replayed under a new timestamp.
func Sign(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(at.Unix(), 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature and rejects timestamps more than tolerance
// away from now.
func Verify(payload []byte, secret, signature string, timestamp int64, now time.Time, tolerance time.Duration) bool {
	at := time.Unix(timestamp, 0)
	if d := now.Sub(at); d > tolerance || d < -tolerance {
		return false
	}
	return hmac.Equal([]byte(Sign(payload, secret, at)), []byte(signature))
}

func signedHeaders(payload []byte, secret string, at time.Time) map[string]string {
	return map[string]string{
		HeaderSignature: Sign(payload, secret, at),
		HeaderTimestamp: strconv.FormatInt(at.Unix(), 10),
	}
}
