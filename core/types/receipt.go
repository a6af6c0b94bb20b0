// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	// ReceiptStatusFailed is the status of a rejected transaction.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status of an executed transaction.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt is the execution artifact of a single transaction within a block.
type Receipt struct {
	Status            uint64
	GasUsed           uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	ReturnValue       []byte

	// Synthetic trace fields for VM-rejected transactions.
	ProgramCounter uint64
	VMError        string
}

// receiptRLP is the consensus encoding of a receipt.
type receiptRLP struct {
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	ReturnValue       []byte
}

// NewRejectedReceipt synthesizes the receipt of a transaction the VM threw
// on: zero program counter, the VM message, and an empty return value.
func NewRejectedReceipt(vmError string) *Receipt {
	return &Receipt{
		Status:         ReceiptStatusFailed,
		ProgramCounter: 0,
		VMError:        vmError,
		ReturnValue:    []byte{},
	}
}

// MarshalBinary returns the consensus encoding of the receipt.
func (r *Receipt) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(&receiptRLP{
		Status:            r.Status,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             r.Bloom,
		ReturnValue:       r.ReturnValue,
	})
}

// Rejected reports whether the receipt carries a synthetic rejection trace.
func (r *Receipt) Rejected() bool {
	return r.Status == ReceiptStatusFailed && r.VMError != ""
}
