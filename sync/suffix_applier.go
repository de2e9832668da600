package sync

import (
	"github.com/holiman/uint256"

	"github.com/chainlight/plcs/events"
	"github.com/chainlight/plcs/metrics"
	"github.com/chainlight/plcs/proof"
	"github.com/chainlight/plcs/types"
)

// adoptProofLocked implements the Chain Suffix Applier (spec.md §4.2) for
// a proof the evaluator has already accepted as better than the current
// one. suffixBlocks is the reconstructed header+interlink suffix Verify
// returned.
func (s *Synchronizer) adoptProofLocked(p *proof.ChainProof, suffixBlocks []*types.Block) {
	prefixHead := p.PrefixHead()
	if prefixHead == nil {
		s.log.Error("sync: adopted proof has an empty prefix")
		s.abortLocked()
		return
	}

	headData, ok := s.storeTx.GetChainData(prefixHead.Hash())
	if !ok || !headData.Extendable() {
		s.rebaseStoreOnPrefixLocked(p, prefixHead)
	}

	for _, b := range suffixBlocks {
		res := s.pushLightBlockLocked(b)
		if res < 0 {
			s.log.Error("sync: suffix block failed internal re-application", "result", res.String())
			s.abortLocked()
			return
		}
	}

	root := p.SuffixHead()
	var pinnedRoot types.Hash
	if root != nil {
		pinnedRoot = root.AccountsRoot
	} else {
		pinnedRoot = prefixHead.Header.AccountsRoot
	}
	s.accounts.SetPendingRoot(pinnedRoot)

	headHash, _ := s.storeTx.Head()
	mainChain, _ := s.storeTx.GetChainData(headHash)
	s.ph = phase{
		kind:        ProveAccountsTree,
		partialTree: s.accounts.PartialAccountsTree(),
	}
	metrics.SyncPhase.Set(int64(ProveAccountsTree))
	s.log.Phase(ProveAccountsTree, "pinned_root", pinnedRoot)
	s.events.Emit(events.HeadChanged, mainChain)
}

// rebaseStoreOnPrefixLocked discards the store's existing dense chain and
// re-seeds it from proof's prefix: prefixHead becomes the new extendable
// main-chain head, every other prefix block is inserted lookup-only
// (spec.md §4.2 step 1).
func (s *Synchronizer) rebaseStoreOnPrefixLocked(p *proof.ChainProof, prefixHead *types.Block) {
	s.storeTx.Truncate()

	headTD := prefixHead.Difficulty()
	headWork := types.RealDifficulty(prefixHead.Hash())
	s.storeTx.PutChainData(prefixHead.Hash(), types.NewChainData(prefixHead, headTD, headWork, true))
	s.storeTx.SetHead(prefixHead.Hash())

	for _, b := range p.Prefix {
		if b.Hash() == prefixHead.Hash() {
			continue
		}
		s.storeTx.PutChainData(b.Hash(), types.NewLookupOnlyChainData(b, true))
	}
}

// pushLightBlockLocked applies a header-only block against the current
// dense chain (spec.md §4.2.1). It is used both to replay an adopted
// proof's reconstructed suffix, and — once wired to a transport — to feed
// newly announced heads one at a time.
func (s *Synchronizer) pushLightBlockLocked(block *types.Block) Result {
	if _, ok := s.storeTx.GetChainData(block.Hash()); ok {
		return OkKnown
	}

	prevData, ok := s.storeTx.GetChainData(block.PrevHash())
	if !ok || !prevData.Extendable() {
		metrics.SuffixOrphans.Inc()
		return ErrOrphan
	}

	totalDifficulty := new(uint256.Int).Add(prevData.TotalDifficulty, block.Difficulty())
	totalWork := new(uint256.Int).Add(prevData.TotalWork, types.RealDifficulty(block.Hash()))

	headHash, hasHead := s.storeTx.Head()
	switch {
	case hasHead && block.PrevHash() == headHash:
		cd := types.NewChainData(block, totalDifficulty, totalWork, true)
		s.storeTx.PutChainData(block.Hash(), cd)
		s.storeTx.SetHead(block.Hash())
		s.events.Emit(events.HeadChanged, cd)
		metrics.SuffixExtensions.Inc()
		return OkExtended

	case hasHead:
		mainChain, ok := s.storeTx.GetChainData(headHash)
		if ok && totalDifficulty.Cmp(mainChain.TotalDifficulty) > 0 {
			cd := types.NewChainData(block, totalDifficulty, totalWork, true)
			s.storeTx.PutChainData(block.Hash(), cd)
			s.storeTx.SetHead(block.Hash())
			s.events.Emit(events.HeadChanged, cd)
			metrics.SuffixRebranches.Inc()
			return OkRebranched
		}
		s.storeTx.PutChainData(block.Hash(), types.NewChainData(block, totalDifficulty, totalWork, false))
		return OkForked

	default:
		cd := types.NewChainData(block, totalDifficulty, totalWork, true)
		s.storeTx.PutChainData(block.Hash(), cd)
		s.storeTx.SetHead(block.Hash())
		s.events.Emit(events.HeadChanged, cd)
		return OkExtended
	}
}
