// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Header holds the chain-positioning fields the miner needs from a block.
type Header struct {
	ParentHash common.Hash
	Number     uint64
	GasLimit   uint64
	Time       uint64
}

// Block is the unit handed to the miner and the VM. Each mining round
// receives a fresh, immutable block; successor blocks are minted through the
// node's CreateBlock hook.
type Block struct {
	header Header

	hash atomic.Pointer[common.Hash]
}

// NewBlock wraps a header into an immutable block.
func NewBlock(header Header) *Block {
	return &Block{header: header}
}

// Header returns a copy of the block header.
func (b *Block) Header() Header { return b.header }

// Number returns the block height.
func (b *Block) Number() uint64 { return b.header.Number }

// Time returns the block timestamp.
func (b *Block) Time() uint64 { return b.header.Time }

// GasLimit returns the block gas limit.
func (b *Block) GasLimit() uint64 { return b.header.GasLimit }

// ParentHash returns the parent block hash.
func (b *Block) ParentHash() common.Hash { return b.header.ParentHash }

// Hash returns the keccak256 hash of the RLP-encoded header, computed once.
func (b *Block) Hash() common.Hash {
	if h := b.hash.Load(); h != nil {
		return *h
	}
	enc, err := rlp.EncodeToBytes(&b.header)
	if err != nil {
		panic(err)
	}
	h := crypto.Keccak256Hash(enc)
	b.hash.Store(&h)
	return h
}
