// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package params

const (
	// TxGas is the intrinsic gas of a plain value transfer. It is the floor
	// below which no further transaction can fit into a block.
	TxGas uint64 = 21000

	// TxGasContractCreation is the intrinsic gas of a contract creation.
	TxGasContractCreation uint64 = 53000

	// TxDataZeroGas is the per-byte calldata cost for zero bytes.
	TxDataZeroGas uint64 = 4

	// TxDataNonZeroGas is the per-byte calldata cost for non-zero bytes.
	TxDataNonZeroGas uint64 = 16

	// BloomByteLength is the width of a block or receipt logs bloom.
	BloomByteLength = 256

	// DefaultBlockGasLimit is the block gas limit used when none is
	// configured. Matches the historical ganache default.
	DefaultBlockGasLimit uint64 = 6_721_975
)
