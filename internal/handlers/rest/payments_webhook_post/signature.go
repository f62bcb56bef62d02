package payments_webhook_post

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	errSignatureMissing   = errors.New("x-signature header missing")
	errSignatureMalformed = errors.New("x-signature header malformed")
	errSignatureMismatch  = errors.New("x-signature does not match")
)

// verifySignature checks the gateway's "ts=...,v1=..." header against
// HMAC-SHA256 over "id:<data.id>;request-id:<x-request-id>;ts:<ts>;".
// Parts whose value is empty are left out of the manifest.
func verifySignature(secret, header, dataID, requestID string) error {
	if header == "" {
		return errSignatureMissing
	}

	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return errSignatureMalformed
	}

	expected, err := hex.DecodeString(v1)
	if err != nil {
		return errSignatureMalformed
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signatureManifest(dataID, requestID, ts)))
	if !hmac.Equal(mac.Sum(nil), expected) {
		return errSignatureMismatch
	}
	return nil
}

func signatureManifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	b.WriteString("ts:" + ts + ";")
	return b.String()
}
