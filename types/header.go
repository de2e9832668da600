package types

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Header is the proof-of-work block header. It carries an interlink: a set
// of back-pointers to ancestors of progressively higher difficulty, which
// is what makes a sparse chain proof possible (see package proof).
type Header struct {
	ParentHash    Hash   // hash of the immediate predecessor header
	Number        uint64 // height; genesis is 0
	Timestamp     uint64 // unix seconds
	NBits         uint32 // compact-encoded target this block had to beat
	Nonce         uint64 // proof-of-work nonce
	BodyRoot      Hash   // commitment to the block body, zero for an empty body
	InterlinkHash Hash   // hash of the Interlink slice carried alongside this header
	AccountsRoot  Hash   // commitment to the accounts tree at this block
}

// rlpHeader mirrors Header for canonical encoding; kept separate so adding
// derived accessors to Header never perturbs the wire/hash encoding.
type rlpHeader struct {
	ParentHash    Hash
	Number        uint64
	Timestamp     uint64
	NBits         uint32
	Nonce         uint64
	BodyRoot      Hash
	InterlinkHash Hash
	AccountsRoot  Hash
}

// Hash returns the Keccak256 hash of the canonical RLP encoding of h.
func (h *Header) Hash() Hash {
	enc, err := rlp.EncodeToBytes(rlpHeader{
		ParentHash:    h.ParentHash,
		Number:        h.Number,
		Timestamp:     h.Timestamp,
		NBits:         h.NBits,
		Nonce:         h.Nonce,
		BodyRoot:      h.BodyRoot,
		InterlinkHash: h.InterlinkHash,
		AccountsRoot:  h.AccountsRoot,
	})
	if err != nil {
		// rlpHeader only contains fixed-size fields and uints; encoding
		// cannot fail short of an allocation failure.
		panic("types: header rlp encode: " + err.Error())
	}
	return Hash(crypto.Keccak256Hash(enc))
}

// Copy returns a deep copy of the header.
func (h *Header) Copy() *Header {
	cp := *h
	return &cp
}
