package accounts

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/types"
)

func TestMemoryAccountsRevertBlockRestoresPriorValue(t *testing.T) {
	m := NewMemoryAccounts()
	key := types.BytesToHash([]byte{1})
	before := &Account{Balance: uint256.NewInt(100), Nonce: 0}
	after := &Account{Balance: uint256.NewInt(150), Nonce: 1}

	m.replaceState(map[types.Hash]*Account{key: after})
	block := &types.Block{Header: &types.Header{Number: 7}}
	m.RecordChangeset(block.Hash(), []Change{{Key: key, Before: before}})

	tx, err := m.Transaction(false)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if err := tx.RevertBlock(block); err != nil {
		t.Fatalf("RevertBlock: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := m.Get(key); !got.Equal(before) {
		t.Fatalf("account after revert: got %+v, want %+v", got, before)
	}
}

func TestMemoryAccountsRevertBlockTwiceFails(t *testing.T) {
	m := NewMemoryAccounts()
	key := types.BytesToHash([]byte{9})
	before := &Account{Balance: uint256.NewInt(5), Nonce: 0}
	m.replaceState(map[types.Hash]*Account{key: {Balance: uint256.NewInt(6), Nonce: 1}})
	block := &types.Block{Header: &types.Header{Number: 3}}
	m.RecordChangeset(block.Hash(), []Change{{Key: key, Before: before}})

	tx, _ := m.Transaction(false)
	if err := tx.RevertBlock(block); err != nil {
		t.Fatalf("first RevertBlock: %v", err)
	}
	if err := tx.RevertBlock(block); err != ErrAccountsMismatch {
		t.Fatalf("second RevertBlock of the same block: want ErrAccountsMismatch, got %v", err)
	}
}

func TestMemoryAccountsRevertBlockMismatch(t *testing.T) {
	m := NewMemoryAccounts()
	tx, _ := m.Transaction(false)
	unknownBlock := &types.Block{Header: &types.Header{Number: 99}}
	if err := tx.RevertBlock(unknownBlock); err != ErrAccountsMismatch {
		t.Fatalf("RevertBlock for an unrecorded block: want ErrAccountsMismatch, got %v", err)
	}
}

func TestMemoryAccountsRevertBlockRemovesNewAccount(t *testing.T) {
	m := NewMemoryAccounts()
	key := types.BytesToHash([]byte{2})
	block := &types.Block{Header: &types.Header{Number: 1}}

	m.replaceState(map[types.Hash]*Account{key: {Balance: uint256.NewInt(10), Nonce: 1}})
	m.RecordChangeset(block.Hash(), []Change{{Key: key, Before: nil}})

	tx, _ := m.Transaction(false)
	if err := tx.RevertBlock(block); err != nil {
		t.Fatalf("RevertBlock: %v", err)
	}
	tx.Commit()

	if got := m.Get(key); got != nil {
		t.Fatalf("account created by the reverted block should no longer exist, got %+v", got)
	}
}

func TestMemoryAccountsTransactionIsolation(t *testing.T) {
	m := NewMemoryAccounts()
	key := types.BytesToHash([]byte{3})
	m.replaceState(map[types.Hash]*Account{key: {Balance: uint256.NewInt(1), Nonce: 0}})

	tx, _ := m.Transaction(false)
	tx.Abort()

	if m.Get(key).Nonce != 0 {
		t.Fatal("an aborted transaction must not mutate the owning MemoryAccounts")
	}
}

func TestSetPendingRootAndPartialAccountsTree(t *testing.T) {
	m := NewMemoryAccounts()
	root := types.BytesToHash([]byte{0xbe, 0xef})
	m.SetPendingRoot(root)

	tree := m.PartialAccountsTree()
	if tree.root != root {
		t.Fatalf("partial tree root: want %x, got %x", root, tree.root)
	}
}
