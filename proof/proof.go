// Package proof implements the chain proof data type and the Proof
// Evaluator: verification of a single proof's internal consistency, and
// the scoring rule used to decide which of two proofs represents more
// accumulated work (spec.md §4.1).
package proof

import (
	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/types"
)

// ChainProof is a NIPoPoW-style certificate: a sparse prefix sampled by
// the interlink structure, and a dense suffix of the most recent headers.
type ChainProof struct {
	Prefix []*types.Block  // sparse ancestor sample, ascending height, self-contained blocks
	Suffix []*types.Header // dense tail, header-only
}

// PrefixHead returns the highest-height block of the prefix, or nil if the
// prefix is empty.
func (p *ChainProof) PrefixHead() *types.Block {
	if len(p.Prefix) == 0 {
		return nil
	}
	return p.Prefix[len(p.Prefix)-1]
}

// SuffixHead returns the last (highest-height) suffix header, or nil if
// the suffix is empty.
func (p *ChainProof) SuffixHead() *types.Header {
	if len(p.Suffix) == 0 {
		return nil
	}
	return p.Suffix[len(p.Suffix)-1]
}

// HeadHeight is the height of the chain this proof claims: the prefix
// head's height plus the suffix length.
func (p *ChainProof) HeadHeight() uint64 {
	head := p.PrefixHead()
	if head == nil {
		return uint64(len(p.Suffix))
	}
	return head.Height() + uint64(len(p.Suffix))
}

// Summary is a read-only digest of a proof, useful for logging and for
// deciding whether to even request a proof before evaluating it in full.
// It does not affect acceptance semantics.
type Summary struct {
	PrefixLength          int
	SuffixLength          int
	HeadHeight            uint64
	SuffixTotalDifficulty *uint256.Int
}

// Summary computes the read-only digest of p (spec.md §4.1 supplement).
// SuffixTotalDifficulty sums each suffix header's nominal difficulty
// (derived from NBits), which is the quantity IsBetterProof's tie-break
// compares.
func (p *ChainProof) Summary() Summary {
	total := new(uint256.Int)
	for _, h := range p.Suffix {
		total.Add(total, types.NominalDifficulty(h.NBits))
	}
	return Summary{
		PrefixLength:          len(p.Prefix),
		SuffixLength:          len(p.Suffix),
		HeadHeight:            p.HeadHeight(),
		SuffixTotalDifficulty: total,
	}
}
