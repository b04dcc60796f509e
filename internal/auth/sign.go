package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"kraterm/internal/errs"
)

// sign computes the Kraken REST API-Sign header value:
//
//	Base64(HMAC-SHA512(Base64Decode(secret), path || SHA256(nonce || postData)))
//
// apiSecret must itself be base64-encoded, as issued by the exchange.
// nonceAndPostData is the concatenation of the decimal nonce and the
// literal POST body (e.g. "1700000000000" + "nonce=1700000000000").
func sign(apiSecret, path, nonceAndPostData string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(apiSecret)
	if err != nil {
		return "", errs.New(errs.Config, "auth.sign", fmt.Errorf("invalid base64 api secret: %w", err))
	}

	shaSum := sha256.Sum256([]byte(nonceAndPostData))

	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(shaSum[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
