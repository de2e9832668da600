// Package store defines the chain-data persistence contract PLCS depends
// on (spec.md §6 ChainDataStore) and a reference in-memory implementation,
// grounded in the teacher's core/rawdb key-value store: batched writes,
// snapshot isolation, and an explicit Truncate for rebasing onto a
// newly adopted proof's prefix.
package store

import "github.com/chainlight/plcs/types"

// ChainDataStore opens transactions over the persistent chain-data store.
// The real implementation backs onto a node-wide key-value database; PLCS
// never touches that database directly outside a transaction.
type ChainDataStore interface {
	// Transaction opens a new transaction. A readonly transaction may not
	// call any of StoreTx's mutating methods.
	Transaction(readonly bool) (StoreTx, error)
}

// StoreTx is a transaction over the chain-data store. No write is visible
// to other transactions (including reads against the ChainDataStore
// outside this one) until Commit succeeds.
type StoreTx interface {
	// GetChainData looks up the stored record for hash. ok is false if no
	// record exists.
	GetChainData(hash types.Hash) (data *types.ChainData, ok bool)

	// PutChainData stores or replaces the record for hash.
	PutChainData(hash types.Hash, data *types.ChainData)

	// GetBlock returns the full block body-carrying record for hash, if
	// the store has one. ok is false for header-only or unknown blocks.
	GetBlock(hash types.Hash) (block *types.Block, ok bool)

	// Head returns the current main-chain head hash. ok is false before
	// any head has ever been set (a brand new store).
	Head() (hash types.Hash, ok bool)

	// SetHead updates the main-chain head pointer.
	SetHead(hash types.Hash)

	// Truncate discards every stored record and the head pointer. Used
	// when an adopted proof's prefix head is not already part of the
	// locally known dense chain (spec.md §4.2 step 1).
	Truncate()

	// Commit writes every staged change through to the backing store.
	// Safe to call more than once; calls after the first are a no-op.
	Commit() error

	// Abort discards every staged change. Safe to call more than once,
	// and safe to call after Commit (a no-op in that case).
	Abort()
}
