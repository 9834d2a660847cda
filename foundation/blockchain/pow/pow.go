// Package pow implements the proof of work search used to seal blocks. The
// engine hashes whole candidate blocks: the nonce is spliced between the
// nonce independent bytes of the block encoding, so the search and any later
// verification of the block hash use the exact same bytes.
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
)

// MaxDifficulty is the largest difficulty that can be expressed since a
// SHA-256 hash has 64 hex characters.
const MaxDifficulty = 64

// Challenge represents the bytes of a candidate block minus the nonce. The
// hash input for any nonce is Prefix || decimal(nonce) || Suffix.
type Challenge struct {
	Prefix []byte
	Suffix []byte
}

// Hash returns the SHA-256 hash of the candidate block sealed with the
// specified nonce.
func (ch Challenge) Hash(nonce uint64) [32]byte {
	buf := make([]byte, 0, len(ch.Prefix)+20+len(ch.Suffix))
	return ch.hash(buf, nonce)
}

// Encode returns the full hash input for the specified nonce.
func (ch Challenge) Encode(nonce uint64) []byte {
	buf := make([]byte, 0, len(ch.Prefix)+20+len(ch.Suffix))
	buf = append(buf, ch.Prefix...)
	buf = strconv.AppendUint(buf, nonce, 10)
	return append(buf, ch.Suffix...)
}

// hash reuses the provided buffer so the search loop doesn't allocate.
func (ch Challenge) hash(buf []byte, nonce uint64) [32]byte {
	buf = append(buf[:0], ch.Prefix...)
	buf = strconv.AppendUint(buf, nonce, 10)
	buf = append(buf, ch.Suffix...)
	return sha256.Sum256(buf)
}

// =============================================================================

// Range represents a contiguous set of nonces [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

// Full is the range covering every nonce.
func Full(start uint64) Range {
	return Range{Start: start, End: math.MaxUint64}
}

// Searcher represents the behavior required to search a range of nonces for
// one that solves the challenge. Other search backends can be substituted
// for the CPU implementation without touching the ledger.
type Searcher interface {
	Search(ctx context.Context, ch Challenge, difficulty uint, r Range) (nonce uint64, found bool)
}

// =============================================================================

// IsHashSolved checks the hex encoded hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	const match = "0000000000000000000000000000000000000000000000000000000000000000"

	if len(hash) != 64 || difficulty > MaxDifficulty {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// isSumSolved is the byte level version of IsHashSolved. Each byte holds
// two hex characters.
func isSumSolved(difficulty uint, sum [32]byte) bool {
	if difficulty > MaxDifficulty {
		return false
	}

	full := difficulty / 2
	for i := uint(0); i < full; i++ {
		if sum[i] != 0 {
			return false
		}
	}

	if difficulty%2 == 1 && sum[full]>>4 != 0 {
		return false
	}

	return true
}

// Hex returns the hex representation of a hash.
func Hex(sum [32]byte) string {
	return hex.EncodeToString(sum[:])
}
