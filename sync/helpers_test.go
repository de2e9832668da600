package sync

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"

	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/accounts"
	"github.com/chainlight/plcs/events"
	"github.com/chainlight/plcs/proof"
	"github.com/chainlight/plcs/store"
	"github.com/chainlight/plcs/types"
)

var fixtureAccountsRoot = types.HexToHash("0xf1a7e5700000000000000000000000000000000000000000000000000000ab")
var fixtureTarget = types.MaxTarget

// fixtureChain is a synthetic, self-verifying PoW chain (mined against
// types.MaxTarget so every nonce succeeds immediately) used to drive the
// synchronizer end to end without a real miner.
type fixtureChain struct {
	blocks     []*types.Block // ascending height, blocks[0] is genesis
	changesets map[types.Hash][]accounts.Change
	finalState map[types.Hash]*accounts.Account
}

func buildFixtureChain(n int) *fixtureChain {
	rng := rand.New(rand.NewSource(1))

	genesis := mineFixtureBlock(nil, 0, nil)
	chain := &fixtureChain{
		blocks:     []*types.Block{genesis},
		changesets: make(map[types.Hash][]accounts.Change),
		finalState: make(map[types.Hash]*accounts.Account),
	}

	for height := 1; height < n; height++ {
		prev := chain.blocks[height-1]
		key := fixtureAccountKey(height)
		before := chain.finalState[key]

		balance := uint256.NewInt(uint64(1_000 + rng.Intn(1_000)))
		next := &accounts.Account{Balance: balance, Nonce: uint64(height)}
		chain.finalState[key] = next

		body := &types.Body{Transactions: [][]byte{fixtureTxPayload(height, key)}}
		block := mineFixtureBlock(prev, uint64(height), body)

		chain.blocks = append(chain.blocks, block)
		chain.changesets[block.Hash()] = []accounts.Change{{Key: key, Before: before}}
	}
	return chain
}

func mineFixtureBlock(prev *types.Block, height uint64, body *types.Body) *types.Block {
	parentHash := types.ZeroHash
	timestamp := uint64(1_700_000_000) + height*12

	var parentInterlink []types.Hash
	if prev != nil {
		parentHash = prev.Hash()
		parentInterlink = prev.GetNextInterlink(fixtureTarget)
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
			NBits:         types.TargetToCompact(fixtureTarget),
			Nonce:         nonce,
			BodyRoot:      bodyRoot,
			AccountsRoot:  fixtureAccountsRoot,
			InterlinkHash: fixtureInterlinkHash(parentInterlink),
		}
		block := &types.Block{Header: h, Interlink: parentInterlink, Body: body}
		if block.Verify() {
			return block
		}
	}
	panic(fmt.Sprintf("sync: failed to mine fixture block at height %d", height))
}

func fixtureInterlinkHash(link []types.Hash) types.Hash {
	return (&types.Block{Header: &types.Header{}, Interlink: link}).InterlinkHash()
}

func fixtureAccountKey(height int) types.Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(height))
	return types.BytesToHash(b[:])
}

func fixtureTxPayload(height int, key types.Hash) []byte {
	return []byte(fmt.Sprintf("transfer#%d:%s", height, key.Hex()))
}

func (c *fixtureChain) sortedEntries() []accounts.AccountEntry {
	entries := make([]accounts.AccountEntry, 0, len(c.finalState))
	for k, v := range c.finalState {
		entries = append(entries, accounts.AccountEntry{Key: k, Account: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessFixtureHash(entries[i].Key, entries[j].Key)
	})
	return entries
}

func lessFixtureHash(a, b types.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// carveProof splits chain into a ChainProof with a one-block prefix (the
// block immediately below the suffix) and a suffix of suffixLen headers
// taken off the tip.
func (c *fixtureChain) carveProof(suffixLen int) *proof.ChainProof {
	split := len(c.blocks) - suffixLen
	headers := make([]*types.Header, suffixLen)
	for i, b := range c.blocks[split:] {
		headers[i] = b.Header
	}
	return &proof.ChainProof{Prefix: []*types.Block{c.blocks[split-1]}, Suffix: headers}
}

// newTestSynchronizer wires up a fresh Synchronizer over empty in-memory
// store and accounts backends.
func newTestSynchronizer() (*Synchronizer, store.ChainDataStore, *accounts.MemoryAccounts, *events.Emitter) {
	memStore := store.NewMemoryChainDataStore()
	storeTx, err := memStore.Transaction(false)
	if err != nil {
		panic(err)
	}
	localAccounts := accounts.NewMemoryAccounts()
	emitter := events.New()
	s := New(storeTx, localAccounts, nil, emitter)
	return s, memStore, localAccounts, emitter
}

// seedChangesets registers chain's per-block changesets with localAccounts,
// the data RevertBlock needs during PROVE_BLOCKS. Must happen before the
// final accounts-tree chunk is accepted (which is when the accounts
// transaction is opened), but may happen any time before that.
func seedChangesets(localAccounts *accounts.MemoryAccounts, chain *fixtureChain) {
	for hash, changes := range chain.changesets {
		localAccounts.RecordChangeset(hash, changes)
	}
}

// driveAccountsTree pushes chain's final account state into s, chunked by
// chunkSize entries per call, and returns the last Result observed.
func driveAccountsTree(s *Synchronizer, chain *fixtureChain, chunkSize int) Result {
	entries := chain.sortedEntries()
	var last Result
	for i := 0; i < len(entries); i += chunkSize {
		end := i + chunkSize
		if end > len(entries) {
			end = len(entries)
		}
		group := entries[i:end]
		chunk := accounts.Chunk{
			Entries:  group,
			Proof:    accounts.BuildChunkProof(fixtureAccountsRoot, group),
			Continue: end < len(entries),
		}
		last = s.PushAccountsTreeChunk(chunk)
	}
	return last
}

// replayBackwardToCompletion pushes the head block then every predecessor in
// turn until s leaves PROVE_BLOCKS (either COMPLETE or ABORTED).
func replayBackwardToCompletion(s *Synchronizer, chain *fixtureChain, tipHeight int) {
	s.PushBlock(chain.blocks[tipHeight])
	for height := tipHeight - 1; height >= 0 && s.State() == ProveBlocks; height-- {
		s.PushBlock(chain.blocks[height])
	}
}
