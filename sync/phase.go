package sync

import (
	"github.com/chainlight/plcs/accounts"
	"github.com/chainlight/plcs/types"
)

// PhaseKind names the five mutually-exclusive states a Synchronizer can be
// in (spec.md §3 SyncPhase).
type PhaseKind int

const (
	ProveChain PhaseKind = iota
	ProveAccountsTree
	ProveBlocks
	Complete
	Aborted
)

// String renders a PhaseKind for logging.
func (k PhaseKind) String() string {
	switch k {
	case ProveChain:
		return "PROVE_CHAIN"
	case ProveAccountsTree:
		return "PROVE_ACCOUNTS_TREE"
	case ProveBlocks:
		return "PROVE_BLOCKS"
	case Complete:
		return "COMPLETE"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// phase is the tagged variant spec.md §9 recommends in place of a bare
// enum with nullable side fields: only the fields relevant to Kind are
// ever populated, and only the code paths for that Kind read them.
type phase struct {
	kind PhaseKind

	// Valid only when kind == ProveAccountsTree.
	partialTree *accounts.PartialAccountsTree

	// Valid only when kind == ProveBlocks.
	accountsTx accounts.AccountsTx
	proofHead  *types.ChainData

	// headHeight is the height of the chain tip as of entry into
	// PROVE_BLOCKS; needsMoreBlocks measures proofHead's progress walking
	// backward against this fixed baseline (spec.md §4.4).
	headHeight uint64
}
