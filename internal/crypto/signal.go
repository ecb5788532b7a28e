package crypto

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// HashSignal maps a signal string to the field element the proof engine
// expects: keccak256(signal) shifted right by 8 bits, as 0x + 64 hex digits.
func HashSignal(signal string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signal))
	n := new(big.Int).SetBytes(h.Sum(nil))
	n.Rsh(n, 8)
	return fmt.Sprintf("0x%064x", n)
}
