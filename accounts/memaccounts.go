package accounts

import (
	"sync"

	"github.com/chainlight/plcs/types"
)

// MemoryAccounts is an in-memory reference implementation of Accounts. It
// keeps one committed account snapshot plus a table of per-block
// changesets (the value each touched account held immediately before that
// block applied) so RevertBlock can walk state backward one block at a
// time, the way reverse block application needs.
type MemoryAccounts struct {
	mu         sync.RWMutex
	state      map[types.Hash]*Account
	changesets map[types.Hash][]Change
	pendingRoot types.Hash
}

// NewMemoryAccounts creates an empty accounts view.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		state:      make(map[types.Hash]*Account),
		changesets: make(map[types.Hash][]Change),
	}
}

// SetPendingRoot records the accounts-tree root the next PartialAccountsTree
// must be pinned to. Call this before PartialAccountsTree when adopting a
// new proof whose head declares a fresh root.
func (m *MemoryAccounts) SetPendingRoot(root types.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingRoot = root
}

// PartialAccountsTree opens a new tree pinned to the most recently set
// pending root.
func (m *MemoryAccounts) PartialAccountsTree() *PartialAccountsTree {
	m.mu.RLock()
	root := m.pendingRoot
	m.mu.RUnlock()
	return NewPartialAccountsTree(root)
}

// Transaction opens a writable (or readonly) view over the committed
// snapshot.
func (m *MemoryAccounts) Transaction(readonly bool) (AccountsTx, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := make(map[types.Hash]*Account, len(m.state))
	for k, v := range m.state {
		state[k] = v
	}
	changesets := make(map[types.Hash][]Change, len(m.changesets))
	for k, v := range m.changesets {
		changesets[k] = v
	}
	return &memAccountsTx{
		owner:      m,
		readonly:   readonly,
		state:      state,
		changesets: changesets,
	}, nil
}

// RecordChangeset registers the per-account "before" values a block
// touched, so AccountsTx.RevertBlock can later undo it. In a full node
// these changesets come from having executed the block going forward;
// here they are supplied directly by whoever assembled the snapshot (a
// test fixture, or a component that replayed history out of band).
func (m *MemoryAccounts) RecordChangeset(blockHash types.Hash, changes []Change) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changesets[blockHash] = changes
}

// Get returns the committed value for key, or nil if it doesn't exist.
func (m *MemoryAccounts) Get(key types.Hash) *Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state[key]
}

// Len returns the number of accounts in the committed snapshot.
func (m *MemoryAccounts) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state)
}

func (m *MemoryAccounts) replaceState(entries map[types.Hash]*Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[types.Hash]*Account, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	m.state = cp
}

func (m *MemoryAccounts) commitState(state map[types.Hash]*Account, changesets map[types.Hash][]Change) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.changesets = changesets
}
