package paymentprovider

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

// ErrBadSignature подпись вебхука отсутствует, не разбирается или не сходится.
// Проверка выполняется до какой-либо интерпретации тела события.
var ErrBadSignature = errors.New("bad webhook signature")

// DefaultSignatureTolerance допустимый возраст метки времени в подписи.
const DefaultSignatureTolerance = 5 * time.Minute

// VerifySignature проверяет заголовок подписи вида "t=<unix>,v1=<hex hmac>".
// HMAC-SHA256 считается от строки "<t>.<payload>" с общим секретом.
// Сравнение выполняется без утечек по времени.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	return verifySignatureAt(payload, header, secret, tolerance, time.Now())
}

func verifySignatureAt(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return fmt.Errorf("%w: missing header", ErrBadSignature)
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return fmt.Errorf("%w: malformed header", ErrBadSignature)
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: malformed timestamp", ErrBadSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed header", ErrBadSignature)
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return fmt.Errorf("%w: timestamp outside tolerance", ErrBadSignature)
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("%w: signature mismatch", ErrBadSignature)
}
