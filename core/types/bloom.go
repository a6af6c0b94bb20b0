// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/adridadou/ganache-core/params"
)

// Bloom is a 256-byte logs bloom, aggregated byte-wise across a block.
type Bloom [params.BloomByteLength]byte

// Or folds the other bloom into b.
func (b *Bloom) Or(other Bloom) {
	for i := range b {
		b[i] |= other[i]
	}
}

// Bytes returns the bloom as a byte slice.
func (b Bloom) Bytes() []byte {
	return b[:]
}

// Empty reports whether no bit of the bloom is set.
func (b Bloom) Empty() bool {
	return b == Bloom{}
}

func (b Bloom) String() string {
	return hexutil.Encode(b[:])
}

// BytesToBloom converts a byte slice to a bloom, truncating or zero-padding
// on the left as needed.
func BytesToBloom(data []byte) Bloom {
	var b Bloom
	if len(data) > len(b) {
		data = data[len(data)-len(b):]
	}
	copy(b[len(b)-len(data):], data)
	return b
}
