package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"

	"idkit/internal/domain"
	"idkit/internal/util/memzero"
)

var (
	// ErrMalformedEnvelope is returned when an envelope is not valid base64,
	// carries a nonce that is not 12 bytes, or is shorter than a GCM tag.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrAuthenticationFailed is returned when the tag does not verify, i.e.
	// the key is wrong or the envelope was modified.
	ErrAuthenticationFailed = errors.New("envelope authentication failed")
)

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under key/nonce. The envelope payload is the
// ciphertext with the 16-byte tag appended.
func Seal(plaintext []byte, key Key, nonce Nonce) (domain.Envelope, error) {
	aead, err := newGCM(key)
	if err != nil {
		return domain.Envelope{}, err
	}
	ct := aead.Seal(nil, nonce[:], plaintext, nil)
	return domain.Envelope{
		IV:      B64(nonce[:]),
		Payload: B64(ct),
	}, nil
}

// SealJSON marshals v and seals it. The marshalled plaintext is wiped.
func SealJSON(v any, key Key, nonce Nonce) (domain.Envelope, error) {
	pt, err := json.Marshal(v)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	defer memzero.Zero(pt)
	return Seal(pt, key, nonce)
}

// Open authenticates and decrypts env under key.
func Open(env domain.Envelope, key Key) ([]byte, error) {
	iv, err := FromB64(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: iv: %v", ErrMalformedEnvelope, err)
	}
	if len(iv) != NonceBytes {
		return nil, fmt.Errorf("%w: iv is %d bytes, want %d", ErrMalformedEnvelope, len(iv), NonceBytes)
	}
	payload, err := FromB64(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedEnvelope, err)
	}
	if len(payload) < TagBytes {
		return nil, fmt.Errorf("%w: payload shorter than tag", ErrMalformedEnvelope)
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	// payload is ciphertext || tag, which is the layout Open expects.
	pt, err := aead.Open(nil, iv, payload, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return pt, nil
}

// OpenJSON opens env and unmarshals the plaintext into out.
func OpenJSON(env domain.Envelope, key Key, out any) error {
	pt, err := Open(env, key)
	if err != nil {
		return err
	}
	defer memzero.Zero(pt)
	if err := json.Unmarshal(pt, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
