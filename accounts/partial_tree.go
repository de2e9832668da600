package accounts

import (
	"bytes"
	"errors"

	"golang.org/x/crypto/blake2b"

	"github.com/chainlight/plcs/types"
)

// Errors returned while building a partial accounts tree.
var (
	ErrChunkOutOfOrder  = errors.New("accounts: chunk out of order")
	ErrChunkBadProof    = errors.New("accounts: chunk proof does not match root")
	ErrChunkKeyMismatch = errors.New("accounts: chunk key/value count mismatch")
	ErrTreeAlreadyDone  = errors.New("accounts: partial tree already complete or aborted")
)

// AccountEntry is a single leaf of an accounts-tree chunk.
type AccountEntry struct {
	Key     types.Hash
	Account *Account
}

// Chunk is one ordered slice of a streamed accounts-tree snapshot, the
// unit pushAccountsTreeChunk accepts (spec.md §4.3).
type Chunk struct {
	Entries  []AccountEntry
	Proof    [][]byte // boundary proof nodes against Root
	Continue bool      // true if more chunks remain after this one
}

// PartialAccountsTree accumulates chunks until a full snapshot pinned at a
// known root exists. It is scoped to a single synchronizer instance and
// discarded (via Commit materializing it, or Abort) at the end of
// PROVE_ACCOUNTS_TREE.
type PartialAccountsTree struct {
	root     types.Hash
	entries  map[types.Hash]*Account
	lastKey  types.Hash
	hasLast  bool
	complete bool
	done     bool // true once Commit or Abort has run
}

// NewPartialAccountsTree creates a tree under construction, pinned to the
// given root (the accounts-tree root declared by the chain proof's head).
func NewPartialAccountsTree(root types.Hash) *PartialAccountsTree {
	return &PartialAccountsTree{
		root:    root,
		entries: make(map[types.Hash]*Account),
	}
}

// PushChunk validates and applies the next chunk. It returns true once the
// tree is fully populated (chunk.Continue was false). Chunks must arrive in
// ascending key order and carry a proof that matches the pinned root.
func (t *PartialAccountsTree) PushChunk(chunk Chunk) (complete bool, err error) {
	if t.done || t.complete {
		return false, ErrTreeAlreadyDone
	}
	if err := t.verifyChunkOrder(chunk); err != nil {
		return false, err
	}
	if err := t.verifyChunkProof(chunk); err != nil {
		return false, err
	}

	for _, e := range chunk.Entries {
		t.entries[e.Key] = e.Account
		t.lastKey = e.Key
		t.hasLast = true
	}

	t.complete = !chunk.Continue
	return t.complete, nil
}

func (t *PartialAccountsTree) verifyChunkOrder(chunk Chunk) error {
	prev := t.lastKey
	hasPrev := t.hasLast
	for _, e := range chunk.Entries {
		if hasPrev && bytes.Compare(e.Key[:], prev[:]) <= 0 {
			return ErrChunkOutOfOrder
		}
		prev = e.Key
		hasPrev = true
	}
	return nil
}

// verifyChunkProof checks the chunk's boundary proof nodes commit to the
// pinned root, mirroring the range-proof boundary check a real
// accounts-tree would perform with Merkle witnesses.
func (t *PartialAccountsTree) verifyChunkProof(chunk Chunk) error {
	if len(chunk.Entries) == 0 {
		return nil
	}
	if len(chunk.Proof) == 0 {
		return ErrChunkBadProof
	}
	first := chunk.Entries[0].Key
	expect := boundaryProofNode(t.root, first)
	if !bytes.Equal(chunk.Proof[0], expect) {
		return ErrChunkBadProof
	}
	return nil
}

// MissingPrefix returns the hex-encoded key the tree still needs the next
// chunk to start from, or "" once complete.
func (t *PartialAccountsTree) MissingPrefix() string {
	if t.complete {
		return ""
	}
	if !t.hasLast {
		return types.Hash{}.Hex()
	}
	return t.lastKey.Hex()
}

// Commit materializes the accumulated entries into dst, the accounts view
// private to the owning synchronizer. It is only valid once PushChunk has
// reported the tree complete.
func (t *PartialAccountsTree) Commit(dst *MemoryAccounts) error {
	if t.done {
		return ErrTreeAlreadyDone
	}
	t.done = true
	if !t.complete {
		return errors.New("accounts: partial tree commit before completion")
	}
	dst.replaceState(t.entries)
	return nil
}

// Abort discards the partial tree without materializing anything.
func (t *PartialAccountsTree) Abort() {
	t.done = true
}

// BuildChunkProof is a test/client-side helper building the boundary proof
// for a chunk of entries against root, matching verifyChunkProof.
func BuildChunkProof(root types.Hash, entries []AccountEntry) [][]byte {
	if len(entries) == 0 {
		return nil
	}
	return [][]byte{boundaryProofNode(root, entries[0].Key)}
}

func boundaryProofNode(root, key types.Hash) []byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("accounts: blake2b init: " + err.Error())
	}
	h.Write(root[:])
	h.Write(key[:])
	return h.Sum(nil)
}
