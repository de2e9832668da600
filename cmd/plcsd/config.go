package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/chainlight/plcs/policy"
)

// Config holds the demo's command-line-configurable parameters. There is no
// datadir or network identity here: cmd/plcsd drives the synchronizer
// against an in-memory store and a locally generated synthetic chain,
// standing in for the bootstrap/transport glue spec.md puts out of scope.
type Config struct {
	Blocks    int // total synthetic chain length, genesis included
	ChunkSize int // accounts-tree snapshot chunk size
	Verbosity int // 0-4, see VerbosityToLogLevel
}

// DefaultConfig returns a Config with a chain long enough to exercise both
// suffix replay and the full backward-replay window.
func DefaultConfig() Config {
	return Config{
		Blocks:    policy.K + policy.NumBlocksVerification + 20,
		ChunkSize: 64,
		Verbosity: 3,
	}
}

// Validate checks cfg is internally consistent and large enough to actually
// drive the synchronizer through every phase.
func (c *Config) Validate() error {
	if min := policy.K + policy.NumBlocksVerification + 2; c.Blocks < min {
		return fmt.Errorf("cmd/plcsd: blocks must be at least %d to exercise both suffix replay and backward replay", min)
	}
	if c.ChunkSize < 1 {
		return errors.New("cmd/plcsd: chunk-size must be positive")
	}
	return nil
}

// VerbosityToLogLevel converts a numeric verbosity level to a slog.Level.
func VerbosityToLogLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// parseFlags parses CLI arguments into a Config. Returns the config, whether
// the caller should exit immediately, and the exit code.
func parseFlags(args []string) (Config, bool, int) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("plcsd", flag.ContinueOnError)
	fs.IntVar(&cfg.Blocks, "blocks", cfg.Blocks, "length of the synthetic demo chain, genesis included")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "accounts-tree snapshot chunk size")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-4 (0 and 1=errors only, 4=debug)")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 2
	}
	if *showVersion {
		fmt.Printf("plcsd %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}
	return cfg, false, 0
}
