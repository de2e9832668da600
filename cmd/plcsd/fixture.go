package main

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"

	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/accounts"
	"github.com/chainlight/plcs/types"
)

// demoAccountsRoot is the single fixed accounts-tree root every synthetic
// header declares. A real accounts tree would produce a distinct root per
// block; that Merkle structure is explicitly out of scope (spec.md §1), so
// the demo pins every header to one root and lets the accounts snapshot
// sink verify chunk proofs against it exactly as it would against a real
// one.
var demoAccountsRoot = types.HexToHash("0xd1107ac7011e0000000000000000000000000000000000000000000000aaaa")

// demoTarget is the easiest possible target, so every mined nonce succeeds
// on the first attempt; the demo cares about exercising the synchronizer's
// phases, not about spending CPU time on proof-of-work.
var demoTarget = types.MaxTarget

// fixtureChain is a synthetic chain built end to end for the demo: full,
// self-contained blocks plus the per-block account changesets the reverse
// applier needs to revert them one at a time.
type fixtureChain struct {
	blocks     []*types.Block            // ascending height, blocks[0] is genesis
	changesets map[types.Hash][]accounts.Change
	finalState map[types.Hash]*accounts.Account
}

// buildFixtureChain mines n full blocks (including genesis) with one
// synthetic account transfer per block, recording the changeset each block
// produced so MemoryAccounts.RevertBlock can later undo it.
func buildFixtureChain(n int) *fixtureChain {
	rng := rand.New(rand.NewSource(1))

	genesis := mineBlock(nil, 0, nil)
	chain := &fixtureChain{
		blocks:     []*types.Block{genesis},
		changesets: make(map[types.Hash][]accounts.Change),
		finalState: make(map[types.Hash]*accounts.Account),
	}

	for height := 1; height < n; height++ {
		prev := chain.blocks[height-1]
		key := accountKey(height)
		before := chain.finalState[key]

		balance := uint256.NewInt(uint64(1_000 + rng.Intn(1_000)))
		next := &accounts.Account{Balance: balance, Nonce: uint64(height)}
		chain.finalState[key] = next

		body := &types.Body{Transactions: [][]byte{txPayload(height, key)}}
		block := mineBlock(prev, uint64(height), body)

		chain.blocks = append(chain.blocks, block)
		chain.changesets[block.Hash()] = []accounts.Change{{Key: key, Before: before}}
	}
	return chain
}

// mineBlock builds the block following prev (nil for genesis) at the given
// height, carrying body. Since demoTarget accepts every hash, no nonce
// search loop is needed in practice, but the structure mirrors a real miner:
// pick a nonce, verify, stop at the first success.
func mineBlock(prev *types.Block, height uint64, body *types.Body) *types.Block {
	parentHash := types.ZeroHash
	timestamp := uint64(1_700_000_000) + height*12

	var parentInterlink []types.Hash
	if prev != nil {
		parentHash = prev.Hash()
		parentInterlink = prev.GetNextInterlink(demoTarget)
	}

	var bodyRoot types.Hash
	if body != nil {
		bodyRoot = body.Root()
	}

	for nonce := uint64(0); nonce < 1<<16; nonce++ {
		h := &types.Header{
			ParentHash:    parentHash,
			Number:        height,
			Timestamp:     timestamp,
			NBits:         types.TargetToCompact(demoTarget),
			Nonce:         nonce,
			BodyRoot:      bodyRoot,
			AccountsRoot:  demoAccountsRoot,
			InterlinkHash: interlinkHashOf(parentInterlink),
		}
		block := &types.Block{Header: h, Interlink: parentInterlink, Body: body}
		if block.Verify() {
			return block
		}
	}
	panic(fmt.Sprintf("cmd/plcsd: failed to mine block at height %d", height))
}

// interlinkHashOf mirrors types' unexported interlinkHash via the public
// Block.InterlinkHash accessor, applied to a throwaway header-only block.
func interlinkHashOf(link []types.Hash) types.Hash {
	return (&types.Block{Header: &types.Header{}, Interlink: link}).InterlinkHash()
}

// accountKey derives a deterministic account identity from a block height.
func accountKey(height int) types.Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(height))
	return types.BytesToHash(b[:])
}

// txPayload is an opaque, already-encoded transaction record (spec.md §1
// treats bodies as opaque to PLCS).
func txPayload(height int, key types.Hash) []byte {
	return []byte(fmt.Sprintf("transfer#%d:%s", height, key.Hex()))
}

// sortedEntries returns the chain's final account state as AccountEntry
// values in ascending key order, the ordering PushChunk requires.
func (c *fixtureChain) sortedEntries() []accounts.AccountEntry {
	entries := make([]accounts.AccountEntry, 0, len(c.finalState))
	for k, v := range c.finalState {
		entries = append(entries, accounts.AccountEntry{Key: k, Account: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessHash(entries[i].Key, entries[j].Key)
	})
	return entries
}

func lessHash(a, b types.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
