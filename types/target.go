package types

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// MaxTarget is the easiest possible target (2^256 - 1): any hash clears it.
var MaxTarget = uint256.NewInt(0).Not(uint256.NewInt(0))

// HashToTarget reinterprets a block hash as a 256-bit big-endian integer,
// the same value a hash must be below to "beat" a target.
func HashToTarget(h Hash) *uint256.Int {
	return new(uint256.Int).SetBytes(h[:])
}

// TargetDepth returns the number of leading zero bits of target relative to
// MaxTarget, i.e. how far below the maximum target a value fell. This is
// the "depth" used by the NIPoPoW-style good-superchain score: a hash that
// beats a much harder (smaller) target than nominally required scores at a
// deeper level.
func TargetDepth(target *uint256.Int) int {
	if target.IsZero() {
		return 256
	}
	depth := 0
	for i := 3; i >= 0; i-- {
		word := target[i]
		if word == 0 {
			depth += 64
			continue
		}
		depth += bits.LeadingZeros64(word)
		break
	}
	return depth
}

// IsValidTarget reports whether target is a sane, non-zero value no larger
// than MaxTarget. Compact-encoded targets that overflow or collapse to zero
// during decoding are rejected by callers via this check.
func IsValidTarget(target *uint256.Int) bool {
	if target == nil || target.IsZero() {
		return false
	}
	return target.Cmp(MaxTarget) <= 0
}

// TargetToCompact encodes target in the classic base-256 "compact" form
// (3 mantissa bytes + 1 exponent byte), matching Bitcoin-family nBits.
func TargetToCompact(target *uint256.Int) uint32 {
	b := target.Bytes()
	// Strip any leading zero bytes uint256.Bytes may leave as of length.
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	size := uint32(len(b))
	var mantissa uint32
	switch {
	case size <= 3:
		var padded [3]byte
		copy(padded[:], b)
		mantissa = uint32(padded[0])<<16 | uint32(padded[1])<<8 | uint32(padded[2])
	default:
		mantissa = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	// If the high bit of the mantissa would be set, the encoding is
	// ambiguous with a sign bit; shift right one byte and bump the exponent.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}
	return mantissa | size<<24
}

// CompactToTarget decodes the compact nBits encoding back into a target.
func CompactToTarget(compact uint32) *uint256.Int {
	size := compact >> 24
	mantissa := compact & 0x007fffff
	target := new(uint256.Int).SetUint64(uint64(mantissa))
	if size <= 3 {
		return target.Rsh(target, uint(8*(3-size)))
	}
	return target.Lsh(target, uint(8*(size-3)))
}

// NominalDifficulty converts a compact-encoded target into the difficulty
// it nominally represents: MaxTarget/target, floored at 1. Block.Difficulty
// and proof.Summary both derive a header's difficulty this way.
func NominalDifficulty(compact uint32) *uint256.Int {
	target := CompactToTarget(compact)
	if target.IsZero() {
		return uint256.NewInt(1)
	}
	q := new(uint256.Int).Div(MaxTarget, target)
	if q.IsZero() {
		return uint256.NewInt(1)
	}
	return q
}

// RealDifficulty converts a block hash into its actual (observed) work
// contribution: MaxTarget / HashToTarget(hash), floored at 1 so a block at
// the theoretical maximum target still contributes nonzero work.
func RealDifficulty(h Hash) *uint256.Int {
	target := HashToTarget(h)
	if target.IsZero() {
		target = uint256.NewInt(1)
	}
	q := new(uint256.Int)
	q.Div(MaxTarget, target)
	if q.IsZero() {
		return uint256.NewInt(1)
	}
	return q
}
