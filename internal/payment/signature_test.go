package payment

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	sigSecret = []byte("whsec_test_secret")
	sigBody   = []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
)

func TestVerifySignatureValid(t *testing.T) {
	now := time.Now()
	header := SignPayload(sigBody, sigSecret, now)

	err := VerifySignature(sigBody, header, sigSecret, now, DefaultTolerance)
	assert.NoError(t, err)
}

func TestVerifySignatureTamperedBody(t *testing.T) {
	now := time.Now()
	header := SignPayload(sigBody, sigSecret, now)

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","amount":1}`)
	err := VerifySignature(tampered, header, sigSecret, now, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	now := time.Now()
	header := SignPayload(sigBody, []byte("whsec_other"), now)

	err := VerifySignature(sigBody, header, sigSecret, now, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	now := time.Now()
	header := SignPayload(sigBody, sigSecret, now.Add(-6*time.Minute))

	err := VerifySignature(sigBody, header, sigSecret, now, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureFutureTimestamp(t *testing.T) {
	now := time.Now()
	header := SignPayload(sigBody, sigSecret, now.Add(10*time.Minute))

	err := VerifySignature(sigBody, header, sigSecret, now, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	now := time.Now()

	headers := []string{
		"",
		"t=notanumber,v1=abcd",
		"v1=deadbeef",
		fmt.Sprintf("t=%d", now.Unix()),
		"garbage",
	}

	for _, h := range headers {
		err := VerifySignature(sigBody, h, sigSecret, now, DefaultTolerance)
		assert.ErrorIs(t, err, ErrInvalidSignature, "header %q", h)
	}
}

func TestVerifySignatureEmptySecret(t *testing.T) {
	now := time.Now()
	header := SignPayload(sigBody, sigSecret, now)

	err := VerifySignature(sigBody, header, nil, now, DefaultTolerance)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureMultipleCandidates(t *testing.T) {
	// Secret rotation sends the old scheme's signature alongside the new
	// one; any valid candidate passes.
	now := time.Now()
	valid := SignPayload(sigBody, sigSecret, now)
	_, v1 := splitSignedHeader(t, valid)

	header := fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(), strings.Repeat("ab", 32), v1)
	err := VerifySignature(sigBody, header, sigSecret, now, DefaultTolerance)
	assert.NoError(t, err)
}

func splitSignedHeader(t *testing.T, header string) (ts, v1 string) {
	t.Helper()
	for _, part := range strings.Split(header, ",") {
		k, v, _ := strings.Cut(part, "=")
		switch k {
		case "t":
			ts = v
		case "v1":
			v1 = v
		}
	}
	return ts, v1
}
