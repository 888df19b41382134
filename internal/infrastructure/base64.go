package infrastructure

import "encoding/base64"

// EncodeBase64 encodes src with the standard alphabet and '=' padding.
// The result is EncodedLen(len(src)) characters long.
func EncodeBase64(src []byte) string {
	return base64.StdEncoding.EncodeToString(src)
}

// EncodedLen returns 4*ceil(n/3), the length of the padded encoding of n bytes
func EncodedLen(n int) int {
	return base64.StdEncoding.EncodedLen(n)
}
