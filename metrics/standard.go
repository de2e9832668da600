package metrics

// Pre-defined metrics for the synchronizer. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around.

var (
	// ---- Proof metrics ----

	// ProofsAccepted counts proofs that replaced the current best proof.
	ProofsAccepted = DefaultRegistry.Counter("proof.accepted")
	// ProofsRejected counts proofs rejected as not better than the current one.
	ProofsRejected = DefaultRegistry.Counter("proof.rejected")
	// ProofScore is registered for the good-superchain score of the current
	// best proof. Nothing in this module sets it, so it stays at 0.
	ProofScore = DefaultRegistry.Gauge("proof.score")
	// ProofVerifyTime records proof verification duration in milliseconds.
	ProofVerifyTime = DefaultRegistry.Histogram("proof.verify_ms")

	// ---- Accounts-tree metrics ----

	// AccountsChunksApplied counts accounts-tree chunks successfully pushed.
	AccountsChunksApplied = DefaultRegistry.Counter("accounts.chunks_applied")
	// AccountsChunksRejected counts accounts-tree chunks rejected (order,
	// proof, or key mismatch).
	AccountsChunksRejected = DefaultRegistry.Counter("accounts.chunks_rejected")
	// AccountsEntriesLoaded tracks the number of accounts loaded by the
	// partial tree currently under construction.
	AccountsEntriesLoaded = DefaultRegistry.Gauge("accounts.entries_loaded")

	// ---- Reverse block application metrics ----

	// BlocksAppliedBackward counts blocks successfully walked backward from
	// the proof head during PROVE_BLOCKS.
	BlocksAppliedBackward = DefaultRegistry.Counter("blocks.applied_backward")
	// BlocksRejected counts blocks rejected during reverse application
	// (bad link, bad proof-of-work, or accounts mismatch).
	BlocksRejected = DefaultRegistry.Counter("blocks.rejected")
	// BlockApplyTime records the duration of a single reverse block
	// application in milliseconds.
	BlockApplyTime = DefaultRegistry.Histogram("blocks.apply_ms")

	// ---- Suffix / light-block metrics ----

	// SuffixExtensions counts dense-suffix pushes that extended the head.
	SuffixExtensions = DefaultRegistry.Counter("suffix.extended")
	// SuffixRebranches counts dense-suffix pushes that rebranched the head.
	SuffixRebranches = DefaultRegistry.Counter("suffix.rebranched")
	// SuffixOrphans counts light-block pushes rejected as orphans.
	SuffixOrphans = DefaultRegistry.Counter("suffix.orphans")

	// ---- Synchronizer lifecycle metrics ----

	// SyncsStarted counts synchronizer instances created.
	SyncsStarted = DefaultRegistry.Counter("sync.started")
	// SyncsCompleted counts synchronizer instances that reached COMPLETE
	// and committed.
	SyncsCompleted = DefaultRegistry.Counter("sync.completed")
	// SyncsAborted counts synchronizer instances that reached ABORTED.
	SyncsAborted = DefaultRegistry.Counter("sync.aborted")
	// SyncPhase tracks the current phase as an integer (see sync.PhaseKind).
	SyncPhase = DefaultRegistry.Gauge("sync.phase")
)
