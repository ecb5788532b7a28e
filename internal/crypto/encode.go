package crypto

import "encoding/base64"

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// FromB64 decodes standard, padded base64.
func FromB64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }
