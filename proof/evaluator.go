package proof

import (
	"errors"

	"github.com/chainlight/plcs/log"
	"github.com/chainlight/plcs/policy"
	"github.com/chainlight/plcs/types"
)

// Evaluator verifies chain proofs and decides which of two competing
// proofs represents more accumulated work (spec.md §4.1).
type Evaluator struct {
	log *log.Logger
}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{log: log.Default().Module("proof")}
}

// ErrBadSuffixLength is returned when a proof's suffix is neither exactly
// K blocks nor the head-height-minus-one exact alternative (spec.md §9
// Open Question 1).
var ErrBadSuffixLength = errors.New("proof: suffix length is neither K nor head.height-1")

// ErrBadInterlink is returned when a suffix header's declared interlink
// hash does not match the interlink computed by stepping forward from its
// predecessor.
var ErrBadInterlink = errors.New("proof: suffix header interlink mismatch")

// ErrBadPrefix is returned when the prefix does not self-verify.
var ErrBadPrefix = errors.New("proof: prefix block fails self-verification")

// Verify checks p's internal consistency and, on success, reconstructs the
// suffix as full Block values (header + interlink, still no body). It
// returns (blocks, nil) on success or (nil, error) naming the first
// violated check.
//
// Checks, in order: the prefix self-verifies; the suffix length is either
// policy.K or headHeight-1 (the one documented exception); and every
// suffix header's interlink hash matches the interlink produced by
// stepping its predecessor forward with the target that header had to
// beat.
func (e *Evaluator) Verify(p *ChainProof) ([]*types.Block, error) {
	for _, b := range p.Prefix {
		if !b.Verify() {
			e.log.Warn("proof: prefix block failed self-verification", "hash", b.Hash().Hex())
			return nil, ErrBadPrefix
		}
	}

	headHeight := p.HeadHeight()
	suffixLen := uint64(len(p.Suffix))
	if suffixLen != policy.K && suffixLen != headHeight-1 {
		return nil, ErrBadSuffixLength
	}

	prev := p.PrefixHead()
	blocks := make([]*types.Block, 0, len(p.Suffix))
	for _, h := range p.Suffix {
		if prev == nil {
			return nil, ErrBadPrefix
		}
		target := types.CompactToTarget(h.NBits)
		interlink := prev.GetNextInterlink(target)
		block := types.NewHeaderOnlyBlock(h, interlink)
		if block.InterlinkHash() != h.InterlinkHash {
			e.log.Warn("proof: suffix interlink mismatch", "height", h.Number)
			return nil, ErrBadInterlink
		}
		if !block.Verify() {
			return nil, ErrBadPrefix
		}
		blocks = append(blocks, block)
		prev = block
	}
	return blocks, nil
}

// IsBetterProof reports whether newProof should replace current. It scores
// both proofs relative to their lowest common ancestor and compares: the
// new proof wins outright on a higher score, and wins on a tie if its
// suffix accumulates at least as much nominal difficulty as current's —
// the tie-break deliberately favors adoption so proofs fed in submission
// order converge (spec.md §4.1).
func (e *Evaluator) IsBetterProof(newProof, current *ChainProof, m int) bool {
	if current == nil {
		return true
	}
	lca := lowestCommonAncestor(newProof.Prefix, current.Prefix)
	newScore := Score(newProof.Prefix, lca, m)
	curScore := Score(current.Prefix, lca, m)
	if newScore != curScore {
		return newScore > curScore
	}
	return newProof.Summary().SuffixTotalDifficulty.Cmp(current.Summary().SuffixTotalDifficulty) >= 0
}

// Score implements the NIPoPoW-style "good superchain" metric (spec.md
// §4.1): only prefix blocks at or above lca's height count. Each
// contributing block is bucketed by how many leading zero bits its hash
// cleared beyond the maximum target (its "depth"). Walking from the
// deepest populated bucket downward, blocks accumulate until the running
// sum reaches m; the depth at which that happens, d*, weights the sum:
// score = 2^max(d*, 0) * sum.
func Score(prefix []*types.Block, lca *types.Block, m int) uint64 {
	lcaHeight := uint64(0)
	if lca != nil {
		lcaHeight = lca.Height()
	}

	counts := make(map[int]uint64)
	maxDepth := 0
	any := false
	for _, b := range prefix {
		if b.Height() < lcaHeight {
			continue
		}
		d := types.TargetDepth(types.HashToTarget(b.Hash()))
		counts[d]++
		if !any || d > maxDepth {
			maxDepth = d
			any = true
		}
	}
	if !any {
		return 0
	}

	var sum uint64
	dStar := 0
	for d := maxDepth; d >= 0; d-- {
		sum += counts[d]
		if sum >= uint64(m) {
			dStar = d
			break
		}
	}
	if dStar < 0 {
		dStar = 0
	}
	return (uint64(1) << uint(dStar)) * sum
}

// lowestCommonAncestor returns the deepest block present (by hash) in both
// a and b's ancestor sets, or nil if none is shared. Both slices are
// assumed to be ascending-height self-contained ancestor chains, the shape
// a ChainProof's Prefix always has.
func lowestCommonAncestor(a, b []*types.Block) *types.Block {
	bHashes := make(map[types.Hash]*types.Block, len(b))
	for _, blk := range b {
		bHashes[blk.Hash()] = blk
	}
	var lca *types.Block
	for _, blk := range a {
		if _, ok := bHashes[blk.Hash()]; ok {
			if lca == nil || blk.Height() > lca.Height() {
				lca = blk
			}
		}
	}
	return lca
}
