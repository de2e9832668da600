package sync

import (
	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/accounts"
	"github.com/chainlight/plcs/events"
	"github.com/chainlight/plcs/metrics"
	"github.com/chainlight/plcs/policy"
	"github.com/chainlight/plcs/types"
)

// enterProveBlocksLocked transitions into PROVE_BLOCKS once the accounts
// snapshot is complete (spec.md §4.3 step 3). proofHead starts out as the
// chain's current head — the block the snapshot is pinned to — and will
// walk backward one predecessor at a time as blocks are prepended.
func (s *Synchronizer) enterProveBlocksLocked(accountsTx accounts.AccountsTx) {
	headHash, _ := s.storeTx.Head()
	proofHead, _ := s.storeTx.GetChainData(headHash)
	s.ph = phase{
		kind:       ProveBlocks,
		accountsTx: accountsTx,
		proofHead:  proofHead,
		headHeight: proofHead.Block.Height(),
	}
	metrics.SyncPhase.Set(int64(ProveBlocks))
	s.log.Phase(ProveBlocks, "height", proofHead.Block.Height())
}

// needsMoreBlocks implements spec.md §4.4's completion predicate:
// backward replay continues until the gap between the fixed chain-tip
// height and proofHead's height reaches policy.NumBlocksVerification.
func needsMoreBlocks(headHeight uint64, proofHead *types.ChainData) bool {
	if proofHead == nil {
		return true
	}
	return headHeight-proofHead.Block.Height() < policy.NumBlocksVerification
}

// pushBlockReverseLocked interprets an inbound full block relative to
// proofHead while in PROVE_BLOCKS (spec.md §4.4): the proof-head block
// re-applied forward (head-path), its immediate predecessor (backward-
// path), or anything else, which is an orphan.
func (s *Synchronizer) pushBlockReverseLocked(block *types.Block) Result {
	proofHead := s.ph.proofHead
	if proofHead == nil {
		return ErrOrphan
	}
	switch block.Hash() {
	case proofHead.Block.Hash():
		return s.pushHeadBlockLocked(block)
	case proofHead.Block.PrevHash():
		return s.pushBlockBackwardsLocked(block)
	default:
		return ErrOrphan
	}
}

// pushHeadBlockLocked re-applies the proof-head block itself in the
// forward direction: required because on initial adoption we only ever
// stored its header-equivalent view.
func (s *Synchronizer) pushHeadBlockLocked(block *types.Block) Result {
	if !s.validateHeadPathLocked(block) {
		metrics.BlocksRejected.Inc()
		return ErrInvalid
	}
	proofHead := s.ph.proofHead
	cd := types.NewChainData(block, proofHead.TotalDifficulty, proofHead.TotalWork, true)
	s.storeTx.PutChainData(block.Hash(), cd)
	s.ph.proofHead = cd
	s.checkCompletionLocked()
	return OkExtended
}

// validateHeadPathLocked mirrors validateBackwardPathLocked but looks
// forward: block must be an immediate successor of its looked-up
// predecessor, and the predecessor's next target (when determinable)
// must justify block's NBits.
func (s *Synchronizer) validateHeadPathLocked(block *types.Block) bool {
	if !block.IsFull() || !block.Verify() {
		return false
	}
	prevData, ok := s.storeTx.GetChainData(block.PrevHash())
	if !ok {
		return false
	}
	if !block.IsImmediateSuccessorOf(prevData.Block) {
		return false
	}
	if target, ok := policy.GetNextTarget(prevData.Block); ok {
		if block.NBits() != types.TargetToCompact(target) {
			return false
		}
	}
	return true
}

// pushBlockBackwardsLocked implements the backward-path (spec.md §4.4):
// block is proofHead's immediate predecessor. It validates, reverts
// accounts state one step, and prepends block as the new proofHead.
func (s *Synchronizer) pushBlockBackwardsLocked(block *types.Block) Result {
	timer := metrics.NewTimer(metrics.BlockApplyTime)
	defer timer.Stop()

	proofHead := s.ph.proofHead
	if !s.validateBackwardPathLocked(block, proofHead) {
		metrics.BlocksRejected.Inc()
		return ErrInvalid
	}

	if err := s.ph.accountsTx.RevertBlock(proofHead.Block); err != nil {
		s.log.Warn("sync: accounts revert failed, rejecting block", "err", err)
		metrics.BlocksRejected.Inc()
		return ErrInvalid
	}

	totalDifficulty := new(uint256.Int).Sub(proofHead.TotalDifficulty, proofHead.Block.Difficulty())
	totalWork := new(uint256.Int).Sub(proofHead.TotalWork, types.RealDifficulty(proofHead.Block.Hash()))
	cd := types.NewChainData(block, totalDifficulty, totalWork, true)
	s.storeTx.PutChainData(block.Hash(), cd)
	s.ph.proofHead = cd

	metrics.BlocksAppliedBackward.Inc()
	s.checkCompletionLocked()
	return OkExtended
}

// validateBackwardPathLocked implements the five backward-path checks of
// spec.md §4.4.
func (s *Synchronizer) validateBackwardPathLocked(block *types.Block, proofHead *types.ChainData) bool {
	if !block.IsFull() || !block.Verify() {
		return false
	}
	if !s.verifyInterlinkLocked(block) {
		return false
	}
	if !proofHead.Block.IsImmediateSuccessorOf(block) {
		return false
	}
	if target, ok := policy.GetNextTarget(block); ok {
		if proofHead.Block.NBits() != types.TargetToCompact(target) {
			return false
		}
	}
	return true
}

// verifyInterlinkLocked checks that every interlink predecessor of block
// that we already hold a record for matches block's own declared
// interlink hash expectations: i.e. block.Verify() already confirmed the
// interlink slice hashes to the header's InterlinkHash; here we confirm
// any already-known ancestor named by that interlink is consistent with
// what we have stored for it.
func (s *Synchronizer) verifyInterlinkLocked(block *types.Block) bool {
	for _, h := range block.Interlink {
		if h.IsZero() {
			continue
		}
		cd, ok := s.storeTx.GetChainData(h)
		if !ok {
			continue // not locally known yet; nothing to contradict
		}
		if cd.Block.Hash() != h {
			return false
		}
	}
	return true
}

// checkCompletionLocked transitions to COMPLETE once needsMoreBlocks goes
// false (spec.md §4.4 `_complete`): the accounts transaction is aborted,
// not committed — the snapshot was already materialized via
// partialTree.Commit in PushAccountsTreeChunk — and a `complete` event
// fires.
func (s *Synchronizer) checkCompletionLocked() {
	if needsMoreBlocks(s.ph.headHeight, s.ph.proofHead) {
		return
	}
	s.ph.accountsTx.Abort()
	headHash, _ := s.storeTx.Head()
	mainChain, _ := s.storeTx.GetChainData(headHash)
	payload := CompletePayload{Proof: s.current, HeadHash: headHash, MainChain: mainChain}
	s.ph = phase{kind: Complete}
	metrics.SyncPhase.Set(int64(Complete))
	s.log.Phase(Complete, "head", headHash)
	s.events.Emit(events.Complete, payload)
}

// pushBlockAtTipLocked extends the now-canonical chain forward once sync
// has reached COMPLETE (spec.md §4.5 table: pushBlock legal in COMPLETE
// too, delegated to the base chain's normal push path). It reuses the
// same light-block decision tree as suffix application, but requires a
// full, body-carrying block.
func (s *Synchronizer) pushBlockAtTipLocked(block *types.Block) Result {
	if !block.IsFull() || !block.Verify() {
		return ErrInvalid
	}
	return s.pushLightBlockLocked(block)
}
