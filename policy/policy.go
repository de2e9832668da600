// Package policy holds the chain-wide constants and the block-utility
// contracts that the synchronizer treats as externally supplied (spec.md
// §1, §6): suffix length, proof security parameter, backward-replay depth,
// and target/difficulty math. In a full node these would come from the
// base chain's generic consensus engine; here they are concrete so the
// module runs standalone.
package policy

import (
	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/types"
)

const (
	// K is the fixed suffix length a chain proof must carry, unless the
	// chain itself is shorter than K+1 blocks (spec.md §3 ChainProof
	// invariant (a)).
	K = 120

	// M is the proof security parameter ("good superchain" parameter)
	// used by the score function to decide how many of the
	// highest-difficulty prefix blocks must be consulted before two
	// proofs can be compared.
	M = 15

	// NumBlocksVerification is the number of full blocks replayed
	// backward from a proof's head before the synchronizer is willing to
	// call the sync complete.
	NumBlocksVerification = 250
)

// HashToTarget, TargetDepth, IsValidTarget, TargetToCompact, and
// RealDifficulty are re-exported from types so callers that only know
// about "the Policy/BlockUtils contract" (spec.md §6) don't need to import
// types directly.
var (
	HashToTarget    = types.HashToTarget
	TargetDepth     = types.TargetDepth
	IsValidTarget   = types.IsValidTarget
	TargetToCompact = types.TargetToCompact
	RealDifficulty  = types.RealDifficulty
)

// GetNextTarget computes the target the block following head must beat.
// This stands in for the base chain's real difficulty retargeting engine
// (explicitly out of scope per spec.md §1); it keeps the target constant,
// which is sufficient to exercise every PLCS invariant without pulling in
// a full retargeting algorithm that spec.md says belongs to the base
// chain, not this subsystem. ok is false only when head is nil, meaning
// there isn't enough history to determine a next target yet.
func GetNextTarget(head *types.Block) (target *uint256.Int, ok bool) {
	if head == nil {
		return nil, false
	}
	return types.CompactToTarget(head.NBits()), true
}
