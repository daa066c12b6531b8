package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature_Valid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	header := signPayload("whsec_test", payload, now.Unix())

	err := verifySignatureAt(payload, header, "whsec_test", DefaultSignatureTolerance, now)
	assert.NoError(t, err)
}

func TestVerifySignature_Invalid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_1"}`)
	valid := signPayload("whsec_test", payload, now.Unix())

	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "missing header",
			header: "",
		},
		{
			name:   "malformed header",
			header: "not-a-signature",
		},
		{
			name:   "wrong secret",
			header: signPayload("whsec_other", payload, now.Unix()),
		},
		{
			name:   "tampered payload",
			header: signPayload("whsec_test", []byte(`{"id":"evt_2"}`), now.Unix()),
		},
		{
			name:   "stale timestamp",
			header: signPayload("whsec_test", payload, now.Add(-10*time.Minute).Unix()),
		},
		{
			name:   "missing v1 part",
			header: fmt.Sprintf("t=%d", now.Unix()),
		},
		{
			name:   "valid header against different payload",
			header: valid[:len(valid)-2] + "ff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifySignatureAt(payload, tt.header, "whsec_test", DefaultSignatureTolerance, now)
			require.ErrorIs(t, err, ErrBadSignature)
		})
	}
}

func TestVerifySignature_SecondSignatureAccepted(t *testing.T) {
	// провайдер присылает несколько v1 при ротации секрета
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_1"}`)

	mac := hmac.New(sha256.New, []byte("whsec_new"))
	fmt.Fprintf(mac, "%d.%s", now.Unix(), payload)
	good := hex.EncodeToString(mac.Sum(nil))
	header := fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(), "deadbeef", good)

	err := verifySignatureAt(payload, header, "whsec_new", DefaultSignatureTolerance, now)
	assert.NoError(t, err)
}
