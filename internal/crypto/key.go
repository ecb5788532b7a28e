package crypto

import (
	"crypto/rand"
	"errors"
)

const (
	KeyBytes   = 32
	NonceBytes = 12
	TagBytes   = 16
)

// ErrKeySize is returned when decoded key material has the wrong length.
var ErrKeySize = errors.New("key must be 32 bytes")

// Key is an AES-256 key.
type Key [KeyBytes]byte

// Nonce is an AES-GCM nonce.
type Nonce [NonceBytes]byte

// KeyMaterial is the secret state of one bridge session.
type KeyMaterial struct {
	Key   Key
	Nonce Nonce
}

// NewKeyMaterial draws a fresh key and nonce from crypto/rand.
func NewKeyMaterial() (KeyMaterial, error) {
	var km KeyMaterial
	if _, err := rand.Read(km.Key[:]); err != nil {
		return KeyMaterial{}, err
	}
	if _, err := rand.Read(km.Nonce[:]); err != nil {
		return KeyMaterial{}, err
	}
	return km, nil
}

// NewNonce draws a fresh nonce, used by the wallet side when answering.
func NewNonce() (Nonce, error) {
	var n Nonce
	_, err := rand.Read(n[:])
	return n, err
}

// KeyFromB64 decodes a base64 key as carried in a connector URL.
func KeyFromB64(s string) (Key, error) {
	var k Key
	b, err := FromB64(s)
	if err != nil {
		return k, err
	}
	if len(b) != KeyBytes {
		return k, ErrKeySize
	}
	copy(k[:], b)
	return k, nil
}

// String returns the standard base64 encoding of the key.
func (k Key) String() string { return B64(k[:]) }
