package types

import "testing"

func TestBytesToHashPadsAndTruncates(t *testing.T) {
	h := BytesToHash([]byte{0x01, 0x02})
	if h[HashLength-1] != 0x02 || h[HashLength-2] != 0x01 {
		t.Fatalf("short input should right-align: got %x", h)
	}
	for i := 0; i < HashLength-2; i++ {
		if h[i] != 0 {
			t.Fatalf("short input should zero-pad on the left: got %x", h)
		}
	}

	long := make([]byte, HashLength+4)
	for i := range long {
		long[i] = byte(i)
	}
	h = BytesToHash(long)
	if h[0] != long[4] {
		t.Fatalf("long input should truncate from the left: got %x", h)
	}
}

func TestHexToHashRoundTrip(t *testing.T) {
	h := BytesToHash([]byte{0xde, 0xad, 0xbe, 0xef})
	parsed := HexToHash(h.Hex())
	if parsed != h {
		t.Fatalf("HexToHash(h.Hex()) = %x, want %x", parsed, h)
	}

	bare := HexToHash("deadbeef")
	prefixed := HexToHash("0xdeadbeef")
	if bare != prefixed {
		t.Fatalf("bare and 0x-prefixed hex should parse identically")
	}
}

func TestIsZero(t *testing.T) {
	if !ZeroHash.IsZero() {
		t.Fatal("ZeroHash must report IsZero")
	}
	if BytesToHash([]byte{1}).IsZero() {
		t.Fatal("a nonzero hash must not report IsZero")
	}
}
