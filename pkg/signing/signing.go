package signing

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// MD5Hex returns the hex-encoded MD5 digest of data.
func MD5Hex(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

// SHA256Hex returns the hex-encoded SHA-256 digest of data.
func SHA256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// StanbicChecksum computes the request checksum for the Stanbic biller API:
// sha256(token + md5(reference)), both hex-encoded.
func StanbicChecksum(token, reference string) string {
	return SHA256Hex(token + MD5Hex(reference))
}

// ValidateStanbicChecksum reports whether checksum matches the expected
// value for the given token and reference.
func ValidateStanbicChecksum(token, reference, checksum string) bool {
	expected := StanbicChecksum(token, reference)
	return hmac.Equal([]byte(expected), []byte(checksum))
}

// Field is a single signed request parameter. Order matters: the Selcom
// digest is computed over fields in the order they are declared.
type Field struct {
	Name  string
	Value string
}

// SelcomSignedData builds the canonical string the Selcom digest is computed
// over: "timestamp=<ts>" followed by "&name=value" for each field in order.
func SelcomSignedData(timestamp string, fields []Field) string {
	var b strings.Builder
	b.WriteString("timestamp=")
	b.WriteString(timestamp)
	for _, f := range fields {
		b.WriteString("&")
		b.WriteString(f.Name)
		b.WriteString("=")
		b.WriteString(f.Value)
	}
	return b.String()
}

// SelcomDigest computes the base64-encoded HMAC-SHA256 of data under apiSecret.
func SelcomDigest(apiSecret, data string) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignedFieldNames joins the field names with commas, in declaration order,
// for the Signed-Fields request header.
func SignedFieldNames(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}
