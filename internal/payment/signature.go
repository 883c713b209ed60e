package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSignature is the only error surfaced for any verification
// failure. Callers must not distinguish which part failed.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// DefaultTolerance bounds how stale a signed timestamp may be.
const DefaultTolerance = 5 * time.Minute

// VerifySignature authenticates a raw webhook body against the signature
// header. The header format is "t=<unix>,v1=<hex>[,v1=<hex>...]"; the
// signed payload is "<t>.<body>" keyed with the shared endpoint secret.
func VerifySignature(body []byte, header string, secret []byte, now time.Time, tolerance time.Duration) error {
	if header == "" || len(secret) == 0 {
		return ErrInvalidSignature
	}

	var timestamp int64 = -1
	var candidates [][]byte

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			candidates = append(candidates, sig)
		}
	}

	if timestamp < 0 || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		if hmac.Equal(candidate, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignPayload produces a valid signature header for body at ts. Used by
// tests and local tooling to emulate gateway deliveries.
func SignPayload(body []byte, secret []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
