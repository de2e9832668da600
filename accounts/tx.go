package accounts

import (
	"errors"

	"github.com/chainlight/plcs/types"
)

// ErrAccountsMismatch is returned by RevertBlock when the view has no
// recorded changeset for the given block, i.e. the view does not actually
// reflect that block having been applied. This is the "accounts hash
// inconsistency" failure mode of spec.md §4.4: the caller must reject the
// block without mutating any state.
var ErrAccountsMismatch = errors.New("accounts: no changeset for block, view inconsistent")

// memAccountsTx is the in-memory AccountsTx. It stages mutations privately
// and only writes them back to the owning MemoryAccounts on Commit.
type memAccountsTx struct {
	owner      *MemoryAccounts
	readonly   bool
	state      map[types.Hash]*Account
	changesets map[types.Hash][]Change
	done       bool
}

// RevertBlock restores every account touched by block to its pre-block
// value and forgets the changeset, so reverting the same block twice
// fails the second time (ErrAccountsMismatch) rather than silently
// succeeding.
func (tx *memAccountsTx) RevertBlock(block *types.Block) error {
	if tx.done {
		return errors.New("accounts: transaction already closed")
	}
	hash := block.Hash()
	changes, ok := tx.changesets[hash]
	if !ok {
		return ErrAccountsMismatch
	}

	for _, c := range changes {
		if c.Before == nil {
			delete(tx.state, c.Key)
		} else {
			tx.state[c.Key] = c.Before
		}
	}
	delete(tx.changesets, hash)
	return nil
}

func (tx *memAccountsTx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if tx.readonly {
		return nil
	}
	tx.owner.commitState(tx.state, tx.changesets)
	return nil
}

func (tx *memAccountsTx) Abort() {
	tx.done = true
}
