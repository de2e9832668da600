package types

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestCompactTargetRoundTrip(t *testing.T) {
	cases := []*uint256.Int{
		uint256.NewInt(1),
		uint256.NewInt(0xffffff),
		new(uint256.Int).Lsh(uint256.NewInt(0x00ffff), 16),
		MaxTarget,
	}
	for _, want := range cases {
		compact := TargetToCompact(want)
		got := CompactToTarget(compact)
		recompact := TargetToCompact(got)
		if recompact != compact {
			t.Fatalf("compact encoding not stable for %s: %x != %x", want.Hex(), compact, recompact)
		}
	}
}

func TestIsValidTarget(t *testing.T) {
	if IsValidTarget(uint256.NewInt(0)) {
		t.Fatal("zero target should be invalid")
	}
	if !IsValidTarget(uint256.NewInt(1)) {
		t.Fatal("target of 1 should be valid")
	}
	if !IsValidTarget(MaxTarget) {
		t.Fatal("MaxTarget should be valid")
	}
	tooBig := new(uint256.Int).AddUint64(MaxTarget, 1) // overflows to 0
	if IsValidTarget(tooBig) {
		t.Fatal("overflowed target should be invalid")
	}
}

func TestTargetDepth(t *testing.T) {
	if d := TargetDepth(MaxTarget); d != 0 {
		t.Fatalf("MaxTarget depth: want 0, got %d", d)
	}
	half := new(uint256.Int).Rsh(MaxTarget, 1)
	if d := TargetDepth(half); d != 1 {
		t.Fatalf("half target depth: want 1, got %d", d)
	}
	if d := TargetDepth(uint256.NewInt(0)); d != 256 {
		t.Fatalf("zero target depth: want 256, got %d", d)
	}
}

func TestNominalDifficultyFlooredAtOne(t *testing.T) {
	d := NominalDifficulty(TargetToCompact(MaxTarget))
	if d.Cmp(uint256.NewInt(1)) < 0 {
		t.Fatalf("difficulty at MaxTarget must be at least 1, got %s", d.Dec())
	}

	tiny := uint256.NewInt(1)
	d = NominalDifficulty(TargetToCompact(tiny))
	want := new(uint256.Int).Div(MaxTarget, tiny)
	if !d.Eq(want) {
		t.Fatalf("difficulty of smallest target: want %s, got %s", want.Dec(), d.Dec())
	}
}

func TestRealDifficultyFlooredAtOne(t *testing.T) {
	var allOnes Hash
	for i := range allOnes {
		allOnes[i] = 0xff
	}
	if d := RealDifficulty(allOnes); d.Cmp(uint256.NewInt(1)) != 0 {
		t.Fatalf("difficulty of the maximal hash: want 1, got %s", d.Dec())
	}

	var zero Hash
	if d := RealDifficulty(zero); d.Cmp(uint256.NewInt(1)) < 0 {
		t.Fatalf("difficulty of the zero hash must floor at 1, got %s", d.Dec())
	}
}
