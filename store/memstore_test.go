package store

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/types"
)

func chainDataFor(h types.Hash) *types.ChainData {
	b := &types.Block{Header: &types.Header{ParentHash: h}}
	return types.NewChainData(b, uint256.NewInt(1), uint256.NewInt(1), true)
}

func TestMemoryStoreCommitIsolation(t *testing.T) {
	s := NewMemoryChainDataStore()
	tx, err := s.Transaction(false)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	hash := types.BytesToHash([]byte{1})
	tx.PutChainData(hash, chainDataFor(hash))
	tx.SetHead(hash)

	// Writes must not be visible outside the transaction before Commit.
	other, err := s.Transaction(true)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if _, ok := other.GetChainData(hash); ok {
		t.Fatal("uncommitted write leaked into a concurrently opened transaction")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	after, err := s.Transaction(true)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if _, ok := after.GetChainData(hash); !ok {
		t.Fatal("committed write should be visible to a new transaction")
	}
	if head, ok := after.Head(); !ok || head != hash {
		t.Fatalf("head after commit: want %x, got %x (ok=%v)", hash, head, ok)
	}
}

func TestMemoryStoreAbortDiscardsWrites(t *testing.T) {
	s := NewMemoryChainDataStore()
	tx, _ := s.Transaction(false)
	hash := types.BytesToHash([]byte{2})
	tx.PutChainData(hash, chainDataFor(hash))
	tx.Abort()

	after, _ := s.Transaction(true)
	if _, ok := after.GetChainData(hash); ok {
		t.Fatal("aborted transaction's writes must not be committed")
	}
}

func TestMemoryStoreTruncate(t *testing.T) {
	s := NewMemoryChainDataStore()
	tx, _ := s.Transaction(false)
	hash := types.BytesToHash([]byte{3})
	tx.PutChainData(hash, chainDataFor(hash))
	tx.SetHead(hash)
	tx.Commit()

	tx2, _ := s.Transaction(false)
	tx2.Truncate()
	if _, ok := tx2.GetChainData(hash); ok {
		t.Fatal("Truncate must discard every existing record within the transaction")
	}
	if _, ok := tx2.Head(); ok {
		t.Fatal("Truncate must clear the head pointer within the transaction")
	}
	tx2.Commit()

	after, _ := s.Transaction(true)
	if _, ok := after.GetChainData(hash); ok {
		t.Fatal("Truncate must be visible to the store once committed")
	}
}

func TestMemoryStoreReadonlyTxPanicsOnWrite(t *testing.T) {
	s := NewMemoryChainDataStore()
	tx, _ := s.Transaction(true)

	defer func() {
		if recover() == nil {
			t.Fatal("writing on a readonly transaction must panic")
		}
	}()
	tx.PutChainData(types.BytesToHash([]byte{4}), chainDataFor(types.BytesToHash([]byte{4})))
}

func TestMemoryStoreGetBlockOnlyForFullBlocks(t *testing.T) {
	s := NewMemoryChainDataStore()
	tx, _ := s.Transaction(false)

	lightHash := types.BytesToHash([]byte{5})
	lightBlock := &types.Block{Header: &types.Header{Number: 1}}
	tx.PutChainData(lightHash, types.NewLookupOnlyChainData(lightBlock, false))
	if _, ok := tx.GetBlock(lightHash); ok {
		t.Fatal("a header-only block must not be retrievable via GetBlock")
	}

	fullHash := types.BytesToHash([]byte{6})
	fullBlock := &types.Block{Header: &types.Header{Number: 2}, Body: &types.Body{}}
	tx.PutChainData(fullHash, types.NewChainData(fullBlock, uint256.NewInt(1), uint256.NewInt(1), true))
	if _, ok := tx.GetBlock(fullHash); !ok {
		t.Fatal("a body-carrying block must be retrievable via GetBlock")
	}
}
