// Command plcsd demonstrates the partial light chain synchronizer end to
// end against a locally generated synthetic chain: it mines a small PoW
// chain with a trivial target, carves a chain proof out of it, and drives a
// Synchronizer through PROVE_CHAIN, PROVE_ACCOUNTS_TREE, PROVE_BLOCKS, and
// COMMIT exactly as a real peer-driven sync would, minus the transport.
//
// Usage:
//
//	plcsd [flags]
//
// Flags:
//
//	--blocks      Length of the synthetic demo chain, genesis included
//	--chunk-size  Accounts-tree snapshot chunk size
//	--verbosity   Log level 0-4 (default: 3)
//	--version     Print version and exit
package main

import (
	"fmt"
	"os"

	"github.com/chainlight/plcs/accounts"
	"github.com/chainlight/plcs/events"
	"github.com/chainlight/plcs/log"
	"github.com/chainlight/plcs/policy"
	"github.com/chainlight/plcs/proof"
	"github.com/chainlight/plcs/store"
	"github.com/chainlight/plcs/sync"
	"github.com/chainlight/plcs/types"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	logger := log.New(VerbosityToLogLevel(cfg.Verbosity))
	log.SetDefault(logger)

	logger.Info("plcsd starting", "version", version,
		"blocks", cfg.Blocks, "chunk-size", cfg.ChunkSize, "verbosity", cfg.Verbosity)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	if err := runDemo(cfg, logger); err != nil {
		logger.Error("demo sync failed", "err", err)
		return 1
	}
	logger.Info("demo sync complete")
	return 0
}

// runDemo builds the synthetic chain, constructs a Synchronizer over it,
// and drives every phase to completion.
func runDemo(cfg Config, logger *log.Logger) error {
	chain := buildFixtureChain(cfg.Blocks)
	tipHeight := uint64(len(chain.blocks) - 1)
	logger.Info("synthetic chain built", "blocks", len(chain.blocks), "tip", tipHeight)

	localAccounts := accounts.NewMemoryAccounts()
	for hash, changes := range chain.changesets {
		localAccounts.RecordChangeset(hash, changes)
	}

	memStore := store.NewMemoryChainDataStore()
	storeTx, err := memStore.Transaction(false)
	if err != nil {
		return fmt.Errorf("opening store transaction: %w", err)
	}

	emitter := events.New()
	subscribeDemoLogging(emitter, logger)

	s := sync.New(storeTx, localAccounts, nil, emitter)

	chainProof := carveChainProof(chain)
	logger.Info("submitting chain proof", "prefix", len(chainProof.Prefix), "suffix", len(chainProof.Suffix))
	if !s.PushProof(chainProof) {
		return fmt.Errorf("proof rejected")
	}
	if s.State() != sync.ProveAccountsTree {
		return fmt.Errorf("unexpected phase after proof adoption: %s", s.State())
	}

	if err := pushAccountsSnapshot(s, chain, cfg.ChunkSize, logger); err != nil {
		return err
	}
	if s.State() != sync.ProveBlocks {
		return fmt.Errorf("unexpected phase after accounts snapshot: %s", s.State())
	}

	if err := replayBackward(s, chain, tipHeight, logger); err != nil {
		return err
	}
	if s.State() != sync.Complete {
		return fmt.Errorf("unexpected phase after backward replay: %s", s.State())
	}

	if !s.Commit() {
		return fmt.Errorf("commit refused")
	}
	return nil
}

// carveChainProof samples the full synthetic chain into a NIPoPoW-style
// proof: every block up to the suffix boundary forms the (self-contained)
// prefix, and the last policy.K headers form the dense suffix.
func carveChainProof(chain *fixtureChain) *proof.ChainProof {
	suffixStart := len(chain.blocks) - suffixLength(chain)
	prefix := chain.blocks[:suffixStart]
	suffixBlocks := chain.blocks[suffixStart:]

	suffix := make([]*types.Header, len(suffixBlocks))
	for i, b := range suffixBlocks {
		suffix[i] = b.Header
	}
	return &proof.ChainProof{Prefix: prefix, Suffix: suffix}
}

func suffixLength(chain *fixtureChain) int {
	if len(chain.blocks)-1 >= policy.K {
		return policy.K
	}
	return len(chain.blocks) - 2
}

// pushAccountsSnapshot streams the demo chain's final account state to s in
// chunkSize-sized pieces, matching the boundary-proof scheme
// accounts.PartialAccountsTree expects.
func pushAccountsSnapshot(s *sync.Synchronizer, chain *fixtureChain, chunkSize int, logger *log.Logger) error {
	entries := chain.sortedEntries()
	for start := 0; start < len(entries) || start == 0; start += chunkSize {
		end := start + chunkSize
		if end > len(entries) {
			end = len(entries)
		}
		group := entries[start:end]
		chunk := accounts.Chunk{
			Entries:  group,
			Proof:    accounts.BuildChunkProof(demoAccountsRoot, group),
			Continue: end < len(entries),
		}
		res := s.PushAccountsTreeChunk(chunk)
		logger.Debug("accounts chunk pushed", "entries", len(group), "result", res.String())
		if res < 0 {
			return fmt.Errorf("accounts chunk rejected: %s", res)
		}
		if !chunk.Continue {
			break
		}
	}
	return nil
}

// replayBackward pushes the proof head's full body first (the head-path,
// required once per spec.md §4.4 since the suffix only ever carried a
// header-only view of it), then walks predecessors backward until
// NeedsMoreBlocks reports false.
func replayBackward(s *sync.Synchronizer, chain *fixtureChain, tipHeight uint64, logger *log.Logger) error {
	res := s.PushBlock(chain.blocks[tipHeight])
	logger.Debug("head block re-applied", "height", tipHeight, "result", res.String())
	if res < 0 {
		return fmt.Errorf("head block rejected: %s", res)
	}

	for s.State() == sync.ProveBlocks {
		height := s.ProofHeadHeight()
		if height == 0 {
			return fmt.Errorf("backward replay reached genesis without completing")
		}
		res := s.PushBlock(chain.blocks[height-1])
		logger.Debug("backward block applied", "height", height-1, "result", res.String())
		if res < 0 {
			return fmt.Errorf("backward block rejected at height %d: %s", height-1, res)
		}
	}
	return nil
}

// subscribeDemoLogging wires every PLCS event to a log line, the minimal
// stand-in for whatever downstream subsystem (RPC notifications, peer
// rebroadcast) would otherwise consume these in a full node.
func subscribeDemoLogging(emitter *events.Emitter, logger *log.Logger) {
	emitter.On(events.HeadChanged, func(payload any) {
		logger.Info("head changed", "payload", payload)
	})
	emitter.On(events.Complete, func(payload any) {
		logger.Info("sync reached COMPLETE", "payload", payload)
	})
	emitter.On(events.Committed, func(payload any) {
		logger.Info("sync committed", "payload", payload)
	})
	emitter.On(events.Aborted, func(payload any) {
		logger.Warn("sync aborted", "payload", payload)
	})
}
