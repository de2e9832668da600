// Package sync implements the Sync State Machine & Transaction Manager
// (spec.md §4.5): the four-phase synchronizer that bootstraps a verified
// chain view from an untrusted peer's chain proof, accounts-tree
// snapshot, and dense block suffix, and atomically promotes the result.
package sync

import (
	"github.com/chainlight/plcs/accounts"
	"github.com/chainlight/plcs/events"
	"github.com/chainlight/plcs/log"
	"github.com/chainlight/plcs/metrics"
	"github.com/chainlight/plcs/policy"
	"github.com/chainlight/plcs/proof"
	"github.com/chainlight/plcs/store"
	"github.com/chainlight/plcs/types"
)

// Synchronizer drives one sync attempt from a single untrusted peer. It
// owns a store transaction (opened at construction, released on commit or
// abort) and, once a proof is adopted, an accounts view scoped to this
// instance. All public methods are serialized through a FIFO task queue
// (spec.md §5) so phase checks and transitions are never racy.
type Synchronizer struct {
	q *taskQueue

	storeTx  store.StoreTx
	accounts accounts.Accounts

	evaluator *proof.Evaluator
	events    *events.Emitter
	log       *log.Logger

	current *proof.ChainProof // the currently adopted (or preexisting/genesis) proof
	ph      phase
}

// New creates a Synchronizer over storeTx and accountsView, starting from
// preexisting (the node's current best proof, possibly a degenerate
// genesis proof with an empty prefix and suffix). The synchronizer takes
// ownership of storeTx: callers must not use it directly afterward.
func New(storeTx store.StoreTx, accountsView accounts.Accounts, preexisting *proof.ChainProof, emitter *events.Emitter) *Synchronizer {
	if emitter == nil {
		emitter = events.New()
	}
	metrics.SyncsStarted.Inc()
	s := &Synchronizer{
		q:         newTaskQueue(),
		storeTx:   storeTx,
		accounts:  accountsView,
		evaluator: proof.NewEvaluator(),
		events:    emitter,
		log:       log.Default().Module("sync"),
		current:   preexisting,
		ph:        phase{kind: ProveChain},
	}
	metrics.SyncPhase.Set(int64(ProveChain))
	return s
}

// State returns the current phase.
func (s *Synchronizer) State() PhaseKind {
	var k PhaseKind
	s.q.submit(func() { k = s.ph.kind })
	return k
}

// ProofHeadHeight returns the height of proofHead's block in PROVE_BLOCKS,
// or 0 in any other phase.
func (s *Synchronizer) ProofHeadHeight() uint64 {
	var h uint64
	s.q.submit(func() {
		if s.ph.kind == ProveBlocks && s.ph.proofHead != nil {
			h = s.ph.proofHead.Block.Height()
		}
	})
	return h
}

// NeedsMoreBlocks reports whether PROVE_BLOCKS still requires backward
// replay before it can complete (spec.md §4.4). It is always false outside
// PROVE_BLOCKS.
func (s *Synchronizer) NeedsMoreBlocks() bool {
	var v bool
	s.q.submit(func() { v = s.needsMoreBlocksLocked() })
	return v
}

func (s *Synchronizer) needsMoreBlocksLocked() bool {
	if s.ph.kind != ProveBlocks {
		return false
	}
	return needsMoreBlocks(s.ph.headHeight, s.ph.proofHead)
}

// GetMissingAccountsPrefix returns the key the accounts-tree snapshot
// still needs its next chunk to start from, or "" if not in
// PROVE_ACCOUNTS_TREE or the tree is already complete.
func (s *Synchronizer) GetMissingAccountsPrefix() string {
	var prefix string
	s.q.submit(func() {
		if s.ph.kind == ProveAccountsTree && s.ph.partialTree != nil {
			prefix = s.ph.partialTree.MissingPrefix()
		}
	})
	return prefix
}

// GetBlockLocators returns an exponentially-sparse sample of onMainChain
// block hashes walking back from the current head: heights head, head-1,
// head-2, head-4, head-8, ... down to genesis (SPEC_FULL.md §4.2
// supplement), so an external transport can resume a stalled header
// fetch.
func (s *Synchronizer) GetBlockLocators() []types.Hash {
	var locators []types.Hash
	s.q.submit(func() {
		headHash, ok := s.storeTx.Head()
		if !ok {
			return
		}
		step := uint64(1)
		hash := headHash
		var headHeight uint64
		for {
			locators = append(locators, hash)
			cd, ok := s.storeTx.GetChainData(hash)
			if !ok || cd.Block == nil {
				return
			}
			height := cd.Block.Height()
			if len(locators) == 1 {
				headHeight = height
			}
			if height == 0 {
				return
			}
			var targetHeight uint64
			if step > headHeight {
				targetHeight = 0
			} else {
				targetHeight = headHeight - step
			}
			next, ok := s.walkBackTo(hash, height, targetHeight)
			if !ok {
				return
			}
			hash = next
			step *= 2
		}
	})
	return locators
}

// walkBackTo follows prevHash links from (hash, height) down to
// targetHeight, returning the hash found there.
func (s *Synchronizer) walkBackTo(hash types.Hash, height, targetHeight uint64) (types.Hash, bool) {
	for height > targetHeight {
		cd, ok := s.storeTx.GetChainData(hash)
		if !ok || cd.Block == nil {
			return types.Hash{}, false
		}
		hash = cd.Block.PrevHash()
		height--
	}
	return hash, true
}

// PushProof evaluates proof against the currently adopted proof and, if
// it wins, adopts it (resetting the synchronizer's phase regardless of
// what phase it was previously in — spec.md §4.5 table note — except
// ABORTED, where PushProof returns false without evaluating). If proof
// structurally fails evaluation, it is rejected with no state change and
// PushProof returns false.
//
// Per spec.md §9 Open Question 2, a structurally valid proof that loses
// the comparison still makes PushProof return true, but it also aborts
// the synchronizer: one instance serves one winning proof, full stop.
// This is surprising but intentional — preserved exactly as documented.
func (s *Synchronizer) PushProof(p *proof.ChainProof) bool {
	var accepted bool
	s.q.submit(func() {
		if s.ph.kind == Aborted {
			accepted = false
			return
		}
		timer := metrics.NewTimer(metrics.ProofVerifyTime)
		suffixBlocks, err := s.evaluator.Verify(p)
		timer.Stop()
		if err != nil {
			s.log.Debug("sync: proof rejected", "err", err)
			accepted = false
			return
		}

		if !s.evaluator.IsBetterProof(p, s.current, policy.M) {
			s.log.Warn("sync: proof scored worse than current, aborting synchronizer")
			metrics.ProofsRejected.Inc()
			s.abortLocked()
			accepted = true
			return
		}

		metrics.ProofsAccepted.Inc()
		s.releasePhaseResourcesLocked()
		s.current = p
		s.adoptProofLocked(p, suffixBlocks)
		accepted = true
	})
	return accepted
}

// PushAccountsTreeChunk feeds the next chunk of the accounts-tree snapshot
// (spec.md §4.3). Legal only in PROVE_ACCOUNTS_TREE.
func (s *Synchronizer) PushAccountsTreeChunk(chunk accounts.Chunk) Result {
	var res Result
	s.q.submit(func() {
		if s.ph.kind != ProveAccountsTree {
			res = ErrIncorrectProof
			return
		}
		complete, err := s.ph.partialTree.PushChunk(chunk)
		if err != nil {
			s.log.Warn("sync: accounts chunk rejected", "err", err)
			metrics.AccountsChunksRejected.Inc()
			res = ErrIncorrectProof
			return
		}
		metrics.AccountsChunksApplied.Inc()
		metrics.AccountsEntriesLoaded.Set(metrics.AccountsEntriesLoaded.Value() + int64(len(chunk.Entries)))
		if !complete {
			res = OkUnfinished
			return
		}

		if err := s.ph.partialTree.Commit(s.accountsMemoryView()); err != nil {
			s.log.Error("sync: partial tree commit failed", "err", err)
			res = ErrIncorrectProof
			return
		}
		accountsTx, err := s.accounts.Transaction(false)
		if err != nil {
			s.log.Error("sync: opening accounts transaction failed", "err", err)
			res = ErrIncorrectProof
			return
		}
		s.enterProveBlocksLocked(accountsTx)
		res = OkComplete
	})
	return res
}

// PushBlock feeds a full block. In PROVE_BLOCKS it is interpreted relative
// to proofHead (head-path or backward-path, spec.md §4.4). In COMPLETE it
// extends the now-canonical chain forward, the same as ordinary full sync.
// Any other phase yields ErrOrphan.
func (s *Synchronizer) PushBlock(block *types.Block) Result {
	var res Result
	s.q.submit(func() {
		switch s.ph.kind {
		case ProveBlocks:
			res = s.pushBlockReverseLocked(block)
		case Complete:
			res = s.pushBlockAtTipLocked(block)
		default:
			res = ErrOrphan
		}
	})
	return res
}

// Commit finalizes the sync: writes the store transaction through,
// commits nothing further on the accounts side (already committed in
// PushAccountsTreeChunk), fires `committed`, and releases all resources.
// Legal only in COMPLETE.
func (s *Synchronizer) Commit() bool {
	var ok bool
	s.q.submit(func() {
		if s.ph.kind != Complete {
			ok = false
			return
		}
		if err := s.storeTx.Commit(); err != nil {
			s.log.Error("sync: store commit failed", "err", err)
			ok = false
			return
		}
		headHash, _ := s.storeTx.Head()
		mainChain, _ := s.storeTx.GetChainData(headHash)
		s.events.Emit(events.Committed, CommitPayload{
			Proof:     s.current,
			HeadHash:  headHash,
			MainChain: mainChain,
		})
		metrics.SyncsCompleted.Inc()
		s.finishLocked(Complete)
		ok = true
	})
	return ok
}

// Abort discards every staged change and transitions to ABORTED. Safe to
// call from any phase, including ABORTED itself (idempotent).
func (s *Synchronizer) Abort() {
	s.q.submit(func() { s.abortLocked() })
}

func (s *Synchronizer) abortLocked() {
	if s.ph.kind == Aborted {
		return
	}
	s.releasePhaseResourcesLocked()
	s.storeTx.Abort()
	s.events.Emit(events.Aborted, struct{}{})
	metrics.SyncsAborted.Inc()
	s.finishLocked(Aborted)
}

func (s *Synchronizer) finishLocked(kind PhaseKind) {
	s.ph = phase{kind: kind}
	metrics.SyncPhase.Set(int64(kind))
	s.log.Phase(kind)
	s.q.stop()
}

// releasePhaseResourcesLocked discards whatever scoped resource the
// current phase holds (partial tree or accounts transaction) without
// otherwise changing phase. Safe to call from any phase.
func (s *Synchronizer) releasePhaseResourcesLocked() {
	if s.ph.partialTree != nil {
		s.ph.partialTree.Abort()
	}
	if s.ph.accountsTx != nil {
		s.ph.accountsTx.Abort()
	}
}

// accountsMemoryView narrows the Accounts handle down to the concrete
// type PartialAccountsTree.Commit needs to materialize into.
func (s *Synchronizer) accountsMemoryView() *accounts.MemoryAccounts {
	mv, ok := s.accounts.(*accounts.MemoryAccounts)
	if !ok {
		panic("sync: accounts view does not support partial tree commit")
	}
	return mv
}

// CommitPayload is the payload carried by the `committed` event: the
// adopted proof, the final head hash, and its chain-data record.
type CommitPayload struct {
	Proof     *proof.ChainProof
	HeadHash  types.Hash
	MainChain *types.ChainData
}

// CompletePayload is the payload carried by the `complete` event (spec.md
// §4.4 `_complete`): the adopted proof, the head hash, and its chain-data
// record.
type CompletePayload struct {
	Proof     *proof.ChainProof
	HeadHash  types.Hash
	MainChain *types.ChainData
}
