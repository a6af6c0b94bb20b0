// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/adridadou/ganache-core/params"
)

// TxStatus is the terminal state a pooled transaction settles into.
type TxStatus uint8

const (
	// TxStatusConfirmed marks a transaction that was included in a block.
	TxStatusConfirmed TxStatus = iota + 1
	// TxStatusRejected marks a transaction the VM refused to execute.
	TxStatusRejected
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusConfirmed:
		return "confirmed"
	case TxStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// txdata is the RLP payload of a dev-node transaction. There is no signature:
// the sender is asserted by the node that accepted the transaction.
type txdata struct {
	From     common.Address
	Nonce    uint64
	GasPrice *uint256.Int
	Gas      uint64
	To       *common.Address `rlp:"nil"`
	Value    *uint256.Int
	Data     []byte
}

// Transaction is a pool-resident transaction as the miner sees it. Besides
// the payload it carries the pool/miner lease flag and a one-shot finalize
// signal that fires when the transaction reaches a terminal state.
type Transaction struct {
	inner txdata

	hash atomic.Pointer[common.Hash]

	// locked is the cross-component lease: while set, the miner is the sole
	// consumer of this transaction and the pool must not hand it out.
	locked atomic.Bool

	finalizeOnce sync.Once
	finalized    chan struct{}
	status       TxStatus
	execErr      error
	receipt      *Receipt
}

// NewTransaction assembles a pooled transaction. Value and gasPrice may be
// nil, which reads as zero.
func NewTransaction(from common.Address, nonce uint64, to *common.Address, value *uint256.Int, gas uint64, gasPrice *uint256.Int, data []byte) *Transaction {
	if value == nil {
		value = new(uint256.Int)
	}
	if gasPrice == nil {
		gasPrice = new(uint256.Int)
	}
	return &Transaction{
		inner: txdata{
			From:     from,
			Nonce:    nonce,
			GasPrice: gasPrice.Clone(),
			Gas:      gas,
			To:       to,
			Value:    value.Clone(),
			Data:     data,
		},
		finalized: make(chan struct{}),
	}
}

// From returns the sender address (the transaction's origin).
func (tx *Transaction) From() common.Address { return tx.inner.From }

// Nonce returns the sender nonce.
func (tx *Transaction) Nonce() uint64 { return tx.inner.Nonce }

// Gas returns the gas allowance of the transaction.
func (tx *Transaction) Gas() uint64 { return tx.inner.Gas }

// To returns the recipient, or nil for a contract creation.
func (tx *Transaction) To() *common.Address { return tx.inner.To }

// Value returns a copy of the transferred amount.
func (tx *Transaction) Value() *uint256.Int { return tx.inner.Value.Clone() }

// Data returns the calldata.
func (tx *Transaction) Data() []byte { return tx.inner.Data }

// GasPrice returns a copy of the gas price.
func (tx *Transaction) GasPrice() *uint256.Int { return tx.inner.GasPrice.Clone() }

// GasPriceCmp compares the gas price against other without copying.
func (tx *Transaction) GasPriceCmp(other *Transaction) int {
	return tx.inner.GasPrice.Cmp(other.inner.GasPrice)
}

// GasPriceIntCmp compares the gas price against the given price.
func (tx *Transaction) GasPriceIntCmp(price *uint256.Int) int {
	return tx.inner.GasPrice.Cmp(price)
}

// IntrinsicGas returns the minimum gas the transaction consumes before any
// execution happens: the base cost plus calldata costs.
func (tx *Transaction) IntrinsicGas() uint64 {
	gas := params.TxGas
	if tx.inner.To == nil {
		gas = params.TxGasContractCreation
	}
	for _, b := range tx.inner.Data {
		if b == 0 {
			gas += params.TxDataZeroGas
		} else {
			gas += params.TxDataNonZeroGas
		}
	}
	return gas
}

// Serialize returns the RLP encoding of the transaction payload.
func (tx *Transaction) Serialize() []byte {
	enc, err := rlp.EncodeToBytes(&tx.inner)
	if err != nil {
		// The payload contains no encoder-hostile types.
		panic(err)
	}
	return enc
}

// Hash returns the keccak256 hash of the serialized payload, computed once.
func (tx *Transaction) Hash() common.Hash {
	if h := tx.hash.Load(); h != nil {
		return *h
	}
	h := crypto.Keccak256Hash(tx.Serialize())
	tx.hash.Store(&h)
	return h
}

// Locked reports whether the miner currently holds the lease on this
// transaction.
func (tx *Transaction) Locked() bool { return tx.locked.Load() }

// SetLocked asserts or releases the miner's lease.
func (tx *Transaction) SetLocked(locked bool) { tx.locked.Store(locked) }

// FillFromResult builds the transaction's receipt from an execution result
// and the block's running cumulative gas, stores it, and returns it.
func (tx *Transaction) FillFromResult(res *ExecResult, cumulativeGasUsed uint64) *Receipt {
	r := &Receipt{
		Status:            ReceiptStatusSuccessful,
		GasUsed:           res.GasUsed,
		CumulativeGasUsed: cumulativeGasUsed,
		Bloom:             res.Bloom,
		ReturnValue:       res.ReturnValue,
	}
	tx.receipt = r
	return r
}

// FillRejected synthesizes the rejected receipt shape for a transaction the
// VM threw on: zero program counter, the VM message, empty return value.
func (tx *Transaction) FillRejected(vmError string) *Receipt {
	r := NewRejectedReceipt(vmError)
	tx.receipt = r
	return r
}

// Receipt returns the receipt filled in during mining, or nil before that.
// Safe to read once the finalized signal has fired.
func (tx *Transaction) Receipt() *Receipt { return tx.receipt }

// Finalize settles the transaction into its terminal state and fires the
// one-shot finalized signal. Later calls are no-ops.
func (tx *Transaction) Finalize(status TxStatus, err error) {
	tx.finalizeOnce.Do(func() {
		tx.status = status
		tx.execErr = err
		close(tx.finalized)
	})
}

// Finalized returns the one-shot signal channel, closed when the transaction
// reaches a terminal state.
func (tx *Transaction) Finalized() <-chan struct{} { return tx.finalized }

// Result returns the terminal status and error. Only valid after the
// finalized signal has fired.
func (tx *Transaction) Result() (TxStatus, error) {
	select {
	case <-tx.finalized:
		return tx.status, tx.execErr
	default:
		return 0, nil
	}
}
