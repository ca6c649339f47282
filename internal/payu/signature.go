package payu

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const signatureSeparator = "~"

// Signature computes the order signature: the hex MD5 of the API key, merchant
// id, reference code, value and currency joined by "~". Empty fields keep
// their slot.
func Signature(apiKey, merchantID, referenceCode, value, currency string) string {
	parts := []string{apiKey, merchantID, referenceCode, value, currency}
	sum := md5.Sum([]byte(strings.Join(parts, signatureSeparator)))
	return hex.EncodeToString(sum[:])
}
