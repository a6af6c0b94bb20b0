// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/adridadou/ganache-core/params"
)

func TestIntrinsicGas(t *testing.T) {
	to := common.BytesToAddress([]byte{0x01})

	tests := []struct {
		name string
		to   *common.Address
		data []byte
		want uint64
	}{
		{"plain transfer", &to, nil, params.TxGas},
		{"contract creation", nil, nil, params.TxGasContractCreation},
		{"zero calldata", &to, []byte{0, 0, 0}, params.TxGas + 3*params.TxDataZeroGas},
		{"nonzero calldata", &to, []byte{1, 2}, params.TxGas + 2*params.TxDataNonZeroGas},
		{"mixed calldata", &to, []byte{0, 7}, params.TxGas + params.TxDataZeroGas + params.TxDataNonZeroGas},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := NewTransaction(common.BytesToAddress([]byte{0xAA}), 0, tt.to, nil, 100_000, uint256.NewInt(1), tt.data)
			require.Equal(t, tt.want, tx.IntrinsicGas())
		})
	}
}

func TestTransactionHash(t *testing.T) {
	to := common.BytesToAddress([]byte{0x01})
	tx1 := NewTransaction(common.BytesToAddress([]byte{0xAA}), 0, &to, uint256.NewInt(5), params.TxGas, uint256.NewInt(10), nil)
	tx2 := NewTransaction(common.BytesToAddress([]byte{0xBB}), 0, &to, uint256.NewInt(5), params.TxGas, uint256.NewInt(10), nil)

	if tx1.Hash() != tx1.Hash() {
		t.Error("hash not stable across calls")
	}
	if tx1.Hash() == tx2.Hash() {
		t.Error("transactions from different senders share a hash")
	}

	enc := tx1.Serialize()
	require.NotEmpty(t, enc)
	require.Equal(t, enc, tx1.Serialize())
}

func TestGasPriceCmp(t *testing.T) {
	cheap := NewTransaction(common.BytesToAddress([]byte{0xAA}), 0, nil, nil, params.TxGas, uint256.NewInt(2), nil)
	dear := NewTransaction(common.BytesToAddress([]byte{0xBB}), 0, nil, nil, params.TxGas, uint256.NewInt(9), nil)

	require.Negative(t, cheap.GasPriceCmp(dear))
	require.Positive(t, dear.GasPriceCmp(cheap))
	require.Zero(t, cheap.GasPriceCmp(cheap))
	require.Negative(t, cheap.GasPriceIntCmp(uint256.NewInt(3)))
}

func TestFinalizeOnce(t *testing.T) {
	tx := NewTransaction(common.BytesToAddress([]byte{0xAA}), 0, nil, nil, params.TxGas, uint256.NewInt(1), nil)

	status, err := tx.Result()
	require.Zero(t, status, "result before finalize should be empty")
	require.NoError(t, err)

	rejection := NewExecutionError(tx.Hash(), errors.New("out of gas"))
	tx.Finalize(TxStatusRejected, rejection)
	tx.Finalize(TxStatusConfirmed, nil) // later calls are no-ops

	select {
	case <-tx.Finalized():
	default:
		t.Fatal("finalized signal did not fire")
	}
	status, err = tx.Result()
	require.Equal(t, TxStatusRejected, status)
	require.Same(t, rejection, err.(*ExecutionError))
	require.Contains(t, err.Error(), "VM Exception while processing transaction")
}

func TestRejectedReceiptShape(t *testing.T) {
	tx := NewTransaction(common.BytesToAddress([]byte{0xAA}), 0, nil, nil, params.TxGas, uint256.NewInt(1), nil)
	r := tx.FillRejected("invalid opcode")

	require.Equal(t, ReceiptStatusFailed, r.Status)
	require.Zero(t, r.ProgramCounter)
	require.Equal(t, "invalid opcode", r.VMError)
	require.Empty(t, r.ReturnValue)
	require.True(t, r.Rejected())
	require.Same(t, r, tx.Receipt())
}

func TestReceiptMarshalBinary(t *testing.T) {
	tx := NewTransaction(common.BytesToAddress([]byte{0xAA}), 0, nil, nil, params.TxGas, uint256.NewInt(1), nil)
	r := tx.FillFromResult(&ExecResult{GasUsed: 21000}, 21000)

	require.Equal(t, ReceiptStatusSuccessful, r.Status)
	enc, err := r.MarshalBinary()
	require.NoError(t, err)
	require.NotEmpty(t, enc)
	require.False(t, r.Rejected())
}

func TestBloomOr(t *testing.T) {
	var a, b Bloom
	a[0] = 0x0f
	b[0] = 0xf0
	b[255] = 0x01

	a.Or(b)
	require.Equal(t, byte(0xff), a[0])
	require.Equal(t, byte(0x01), a[255])
	require.False(t, a.Empty())
	require.True(t, Bloom{}.Empty())
}
