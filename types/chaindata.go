package types

import "github.com/holiman/uint256"

// ChainData is the per-block record kept in the chain store. It is the Go
// rendering of spec.md §9's recommended tagged variant: a block stored only
// for interlink lookup (LookupOnly) can never be extended, so the "-1
// sentinel" the original overloads a numeric field with is instead a
// distinct bool plus a pair of fields that are only meaningful when it is
// false.
type ChainData struct {
	Block *Block

	// LookupOnly marks a block that was inserted purely so interlink
	// predecessors can be resolved (e.g. non-head prefix blocks of an
	// adopted proof). LookupOnly blocks are never extended: pushing a
	// block whose parent is LookupOnly must yield ErrOrphan.
	LookupOnly bool

	// TotalDifficulty and TotalWork are meaningful only when !LookupOnly.
	TotalDifficulty *uint256.Int
	TotalWork       *uint256.Int

	OnMainChain bool
}

// Extendable reports whether this ChainData may serve as the parent of a
// new block (i.e. it carries real cumulative totals).
func (cd *ChainData) Extendable() bool {
	return cd != nil && !cd.LookupOnly
}

// NewLookupOnlyChainData builds a ChainData for a block that is stored for
// interlink lookup only and must never be extended.
func NewLookupOnlyChainData(block *Block, onMainChain bool) *ChainData {
	return &ChainData{
		Block:       block,
		LookupOnly:  true,
		OnMainChain: onMainChain,
	}
}

// NewChainData builds a ChainData for a block with real, extendable totals.
func NewChainData(block *Block, totalDifficulty, totalWork *uint256.Int, onMainChain bool) *ChainData {
	return &ChainData{
		Block:           block,
		TotalDifficulty: totalDifficulty,
		TotalWork:       totalWork,
		OnMainChain:     onMainChain,
	}
}
