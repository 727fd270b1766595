package adyen

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// hmacSignatureKey is where the gateway embeds each item's signature.
const hmacSignatureKey = "hmacSignature"

// Authenticator verifies inbound webhook deliveries against the configured
// HMAC secret before any of their data is trusted.
type Authenticator struct {
	hmacKey string
}

// NewAuthenticator creates a webhook authenticator. An empty key disables
// verification entirely: every delivery is accepted. That is an explicit
// trust decision the integrator must opt into knowingly; the server logs a
// warning at startup when running in that mode.
func NewAuthenticator(hmacKey string) *Authenticator {
	return &Authenticator{hmacKey: hmacKey}
}

// Bypassed reports whether verification is disabled for lack of a secret.
func (a *Authenticator) Bypassed() bool {
	return a.hmacKey == ""
}

// Authorized checks every item of a delivery against its embedded signature.
// A delivery with no items is untrusted by default. If any single item fails,
// the whole delivery is rejected, including items that would have verified.
func (a *Authenticator) Authorized(rawBody []byte) bool {
	if a.Bypassed() {
		return true
	}

	notification, err := ParseNotification(rawBody)
	if err != nil {
		return false
	}
	items := notification.Items()
	if len(items) == 0 {
		return false
	}

	key, err := hex.DecodeString(a.hmacKey)
	if err != nil {
		return false
	}

	for _, item := range items {
		if !validItemSignature(item, key) {
			return false
		}
	}
	return true
}

func validItemSignature(item NotificationItem, key []byte) bool {
	embedded, err := base64.StdEncoding.DecodeString(item.AdditionalData[hmacSignatureKey])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(signingString(item)))

	// hmac.Equal compares in constant time; a plain == on the base64 strings
	// would leak a timing side channel.
	return hmac.Equal(mac.Sum(nil), embedded)
}

// signingString builds the canonical serialization the gateway signs: a fixed
// ordered field subset joined with colons, with backslashes and colons inside
// values escaped.
func signingString(item NotificationItem) string {
	fields := []string{
		item.PSPReference,
		item.OriginalReference,
		item.MerchantAccountCode,
		item.MerchantReference,
		strconv.FormatInt(item.Amount.Value, 10),
		item.Amount.Currency,
		item.EventCode,
		item.Success,
	}
	for i, f := range fields {
		f = strings.ReplaceAll(f, `\`, `\\`)
		fields[i] = strings.ReplaceAll(f, ":", `\:`)
	}
	return strings.Join(fields, ":")
}
