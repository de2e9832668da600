// Package accounts defines the accounts-tree contracts PLCS depends on
// (spec.md §6 Accounts/PartialAccountsTree) and an in-memory reference
// implementation. The real accounts-tree Merkle structure is explicitly
// out of scope (spec.md §1); this package stands in with a flat,
// content-addressed map plus a blake2b commitment, enough to exercise
// chunked ingestion and block-reverting end to end.
package accounts

import (
	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/types"
)

// Account is the minimal per-address record PLCS reverts and snapshots.
type Account struct {
	Balance *uint256.Int
	Nonce   uint64
}

// Equal reports whether two accounts hold the same balance and nonce.
func (a *Account) Equal(o *Account) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.Nonce == o.Nonce && a.Balance.Eq(o.Balance)
}

// Change records an account's value immediately before a block was
// applied, so that block's effect can be undone by restoring it.
// Before == nil means the account did not exist before the block.
type Change struct {
	Key    types.Hash
	Before *Account
}

// Accounts is the node-wide accounts-tree handle PLCS is handed at
// construction (spec.md §6).
type Accounts interface {
	// SetPendingRoot pins the root the next PartialAccountsTree must
	// build toward. The synchronizer calls this once, immediately after
	// adopting a proof and before opening the partial tree, since
	// PartialAccountsTree itself takes no arguments (spec.md §6).
	SetPendingRoot(root types.Hash)

	// PartialAccountsTree opens a new, empty partial tree pinned to the
	// most recently set pending root.
	PartialAccountsTree() *PartialAccountsTree

	// Transaction opens a transaction over the (by now complete)
	// snapshot, used to revert blocks one at a time.
	Transaction(readonly bool) (AccountsTx, error)
}

// AccountsTx is a writable view over a completed accounts snapshot.
type AccountsTx interface {
	// RevertBlock undoes block's effect on account state, moving the
	// view one block earlier. It fails with ErrAccountsMismatch if the
	// view does not reflect block having been applied (the key
	// "accounts hash inconsistency" failure mode from spec.md §4.4).
	RevertBlock(block *types.Block) error

	Commit() error
	Abort()
}
