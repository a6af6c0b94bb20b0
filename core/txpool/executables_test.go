// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/adridadou/ganache-core/core/types"
	"github.com/adridadou/ganache-core/params"
)

func newTx(from common.Address, nonce, price uint64) *types.Transaction {
	to := common.BytesToAddress([]byte{0xEE})
	return types.NewTransaction(from, nonce, &to, uint256.NewInt(0), params.TxGas, uint256.NewInt(price), nil)
}

func TestOriginHeapNonceOrder(t *testing.T) {
	from := common.BytesToAddress([]byte{0xAA})
	oh := new(OriginHeap)

	// Insert out of order; the head must always be the lowest nonce,
	// regardless of gas price.
	oh.Add(newTx(from, 2, 100))
	oh.Add(newTx(from, 0, 8))
	oh.Add(newTx(from, 1, 50))

	require.Equal(t, 3, oh.Len())
	for want := uint64(0); want < 3; want++ {
		head := oh.Peek()
		require.NotNil(t, head)
		require.Equal(t, want, head.Nonce())
		hasMore := oh.RemoveBest()
		require.Equal(t, want < 2, hasMore)
	}
	require.Nil(t, oh.Peek())
	require.False(t, oh.RemoveBest())
}

func TestExecutablesPendingFor(t *testing.T) {
	ex := NewExecutables()
	aa := common.BytesToAddress([]byte{0xAA})
	bb := common.BytesToAddress([]byte{0xBB})

	require.Nil(t, ex.PendingFor(aa))

	ex.Add(newTx(aa, 0, 5))
	ex.Add(newTx(aa, 1, 5))
	ex.Add(newTx(bb, 0, 20))

	require.Equal(t, 2, ex.PendingFor(aa).Len())
	require.Equal(t, 1, ex.PendingFor(bb).Len())

	// The view is live: a later Add shows up through an already-held heap.
	oh := ex.PendingFor(aa)
	ex.Add(newTx(aa, 2, 5))
	require.Equal(t, 3, oh.Len())
}

func TestExecutablesOriginsSorted(t *testing.T) {
	ex := NewExecutables()
	for _, b := range []byte{0xCC, 0x01, 0xAA} {
		ex.Add(newTx(common.BytesToAddress([]byte{b}), 0, 1))
	}

	origins := ex.Origins()
	require.Equal(t, []common.Address{
		common.BytesToAddress([]byte{0x01}),
		common.BytesToAddress([]byte{0xAA}),
		common.BytesToAddress([]byte{0xCC}),
	}, origins)
}

func TestOriginsSkipsDrainedQueues(t *testing.T) {
	ex := NewExecutables()
	aa := common.BytesToAddress([]byte{0xAA})
	ex.Add(newTx(aa, 0, 1))
	ex.PendingFor(aa).RemoveBest()

	require.Empty(t, ex.Origins())
}

func TestInProgressLifecycle(t *testing.T) {
	ex := NewExecutables()
	tx := newTx(common.BytesToAddress([]byte{0xAA}), 0, 5)

	ex.MarkInProgress(tx)
	require.True(t, ex.InProgress(tx))
	require.Equal(t, 1, ex.InProgressCount())

	tx.Finalize(types.TxStatusConfirmed, nil)
	require.Eventually(t, func() bool {
		return !ex.InProgress(tx)
	}, time.Second, time.Millisecond, "finalized tx not removed from in-progress set")
}
