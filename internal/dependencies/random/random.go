// Package random abstracts randomness for the draws the game makes:
// game identifiers, edit PINs, and table numbers. Tests queue fixed
// values instead of seeding.
package random

import (
	"crypto/rand"
	"math/big"
)

// Random is the source of randomness handed to services.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String draws length characters from the alphabet
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand. Game identifiers and PINs double
// as credentials, so they must not come from a guessable sequence.
type CryptoRandom struct{}

var _ Random = (*CryptoRandom)(nil)

// New returns a crypto/rand-backed source.
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}
