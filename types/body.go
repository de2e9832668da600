package types

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// Body is a block's transaction payload. PLCS treats transactions as
// opaque, already-encoded records: verifying and applying their effects on
// account state is the job of the accounts-tree/VM layer, out of scope
// here (spec.md §1).
type Body struct {
	Transactions [][]byte
}

// Root returns a deterministic commitment to the body's transaction list,
// the value a correct Header.BodyRoot must equal.
func (b *Body) Root() Hash {
	if b == nil || len(b.Transactions) == 0 {
		return ZeroHash
	}
	var data []byte
	for _, tx := range b.Transactions {
		data = append(data, tx...)
	}
	return Hash(crypto.Keccak256Hash(data))
}
