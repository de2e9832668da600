package types

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Block is an immutable chain record: a header, its interlink (the set of
// back-pointers to higher-difficulty ancestors that makes sparse chain
// proofs possible), and an optional body. A Block with a nil Body is a
// "light" or header-only block — exactly what a chain-proof suffix or
// prefix carries until it is replaced by a full block during reverse
// application.
type Block struct {
	Header    *Header
	Interlink []Hash
	Body      *Body // nil for a header-only block
}

// NewHeaderOnlyBlock builds a light block from a header and its interlink.
func NewHeaderOnlyBlock(h *Header, interlink []Hash) *Block {
	return &Block{Header: h, Interlink: interlink}
}

// Hash returns the block's identity hash (the hash of its header).
func (b *Block) Hash() Hash { return b.Header.Hash() }

// PrevHash returns the declared parent hash.
func (b *Block) PrevHash() Hash { return b.Header.ParentHash }

// Height returns the block number.
func (b *Block) Height() uint64 { return b.Header.Number }

// NBits returns the compact-encoded target this block had to beat.
func (b *Block) NBits() uint32 { return b.Header.NBits }

// Difficulty returns the nominal difficulty implied by NBits: how hard the
// declared target was to beat, independent of how far the actual hash fell
// below it (see RealDifficulty for that).
func (b *Block) Difficulty() *uint256.Int {
	return NominalDifficulty(b.Header.NBits)
}

// IsFull reports whether the block carries a body.
func (b *Block) IsFull() bool { return b.Body != nil }

// interlinkHash hashes an interlink slice the same way a header's declared
// InterlinkHash must have been computed.
func interlinkHash(link []Hash) Hash {
	enc, err := rlp.EncodeToBytes(link)
	if err != nil {
		panic("types: interlink rlp encode: " + err.Error())
	}
	return Hash(crypto.Keccak256Hash(enc))
}

// InterlinkHash returns the hash of b's own interlink slice.
func (b *Block) InterlinkHash() Hash { return interlinkHash(b.Interlink) }

// Verify checks b's self-contained invariants: the header's declared
// interlink hash matches the carried interlink, and the block's hash beats
// the target implied by its own NBits. It does not check linkage to any
// other block — callers compose this with IsImmediateSuccessorOf and
// interlink-predecessor checks for that.
func (b *Block) Verify() bool {
	if b.Header == nil {
		return false
	}
	if b.Header.InterlinkHash != interlinkHash(b.Interlink) {
		return false
	}
	if b.Body != nil && b.Header.BodyRoot != b.Body.Root() {
		return false
	}
	target := CompactToTarget(b.Header.NBits)
	if !IsValidTarget(target) {
		return false
	}
	hashTarget := HashToTarget(b.Hash())
	return hashTarget.Cmp(target) <= 0
}

// IsImmediateSuccessorOf reports whether b directly follows other: b's
// parent hash names other, b's height is exactly one more, and b's
// timestamp does not precede other's.
func (b *Block) IsImmediateSuccessorOf(other *Block) bool {
	if other == nil || b.Header == nil || other.Header == nil {
		return false
	}
	if b.PrevHash() != other.Hash() {
		return false
	}
	if b.Height() != other.Height()+1 {
		return false
	}
	return b.Header.Timestamp >= other.Header.Timestamp
}

// GetNextInterlink computes the interlink the *next* block (built on top of
// b) should carry, given the target that next block must beat. Per the
// NIPoPoW interlink construction: every level shallower than or equal to
// b's own proof-of-work depth is replaced by b's hash; deeper levels carry
// forward unchanged from b's own interlink.
func (b *Block) GetNextInterlink(target *uint256.Int) []Hash {
	depth := TargetDepth(HashToTarget(b.Hash()))
	needed := depth + 1
	if len(b.Interlink) > needed {
		needed = len(b.Interlink)
	}
	next := make([]Hash, needed)
	for i := 0; i < needed; i++ {
		if i < len(b.Interlink) {
			next[i] = b.Interlink[i]
		}
	}
	for i := 0; i <= depth; i++ {
		next[i] = b.Hash()
	}
	_ = target // target is informational here: depth is intrinsic to b's own hash.
	return next
}
