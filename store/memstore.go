package store

import (
	"sync"

	"github.com/chainlight/plcs/types"
)

// MemoryChainDataStore is an in-memory ChainDataStore, the reference
// implementation used by tests and by cmd/plcsd. It is safe for concurrent
// use; each transaction works against a private copy of the maps taken when
// it is opened, and only touches the shared maps while holding mu, during
// Transaction and Commit.
type MemoryChainDataStore struct {
	mu        sync.RWMutex
	chainData map[types.Hash]*types.ChainData
	blocks    map[types.Hash]*types.Block
	head      types.Hash
	hasHead   bool
}

// NewMemoryChainDataStore creates an empty store.
func NewMemoryChainDataStore() *MemoryChainDataStore {
	return &MemoryChainDataStore{
		chainData: make(map[types.Hash]*types.ChainData),
		blocks:    make(map[types.Hash]*types.Block),
	}
}

// Transaction opens a snapshot transaction. Writes accumulate privately
// and are applied to the store only on Commit.
func (s *MemoryChainDataStore) Transaction(readonly bool) (StoreTx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := &memTx{
		store:     s,
		readonly:  readonly,
		chainData: make(map[types.Hash]*types.ChainData, len(s.chainData)),
		blocks:    make(map[types.Hash]*types.Block, len(s.blocks)),
		head:      s.head,
		hasHead:   s.hasHead,
	}
	for k, v := range s.chainData {
		tx.chainData[k] = v
	}
	for k, v := range s.blocks {
		tx.blocks[k] = v
	}
	return tx, nil
}

// memTx is a snapshot transaction over a MemoryChainDataStore.
type memTx struct {
	store    *MemoryChainDataStore
	readonly bool

	chainData map[types.Hash]*types.ChainData
	blocks    map[types.Hash]*types.Block
	head      types.Hash
	hasHead   bool

	truncated bool
	done      bool // set once Commit or Abort has run
}

func (tx *memTx) GetChainData(hash types.Hash) (*types.ChainData, bool) {
	cd, ok := tx.chainData[hash]
	return cd, ok
}

func (tx *memTx) PutChainData(hash types.Hash, data *types.ChainData) {
	tx.assertWritable()
	tx.chainData[hash] = data
	if data.Block != nil && data.Block.IsFull() {
		tx.blocks[hash] = data.Block
	}
}

func (tx *memTx) GetBlock(hash types.Hash) (*types.Block, bool) {
	b, ok := tx.blocks[hash]
	return b, ok
}

func (tx *memTx) Head() (types.Hash, bool) {
	return tx.head, tx.hasHead
}

func (tx *memTx) SetHead(hash types.Hash) {
	tx.assertWritable()
	tx.head = hash
	tx.hasHead = true
}

func (tx *memTx) Truncate() {
	tx.assertWritable()
	tx.chainData = make(map[types.Hash]*types.ChainData)
	tx.blocks = make(map[types.Hash]*types.Block)
	tx.hasHead = false
	tx.head = types.Hash{}
	tx.truncated = true
}

func (tx *memTx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if tx.readonly {
		return nil
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.chainData = tx.chainData
	tx.store.blocks = tx.blocks
	tx.store.head = tx.head
	tx.store.hasHead = tx.hasHead
	return nil
}

func (tx *memTx) Abort() {
	tx.done = true
}

func (tx *memTx) assertWritable() {
	if tx.readonly {
		panic("store: write on a readonly transaction")
	}
}
