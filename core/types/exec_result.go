// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ExecResult is what the VM hands back for a transaction it executed.
type ExecResult struct {
	GasUsed     uint64
	Bloom       Bloom
	ReturnValue []byte
}

// ExecutionError is the runtime error a VM-rejected transaction is finalized
// with. It carries the offending transaction hash and the VM message.
type ExecutionError struct {
	TxHash common.Hash
	Reason string
}

// NewExecutionError wraps a VM failure for the given transaction.
func NewExecutionError(txHash common.Hash, err error) *ExecutionError {
	return &ExecutionError{TxHash: txHash, Reason: err.Error()}
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("VM Exception while processing transaction %s: %s", e.TxHash.Hex(), e.Reason)
}
