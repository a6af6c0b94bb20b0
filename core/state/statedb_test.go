// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var addr = common.BytesToAddress([]byte{0xAA})

func TestCheckpointNesting(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddBalance(addr, uint256.NewInt(100))

	require.NoError(t, s.Checkpoint(ctx))
	s.SubBalance(addr, uint256.NewInt(40))
	require.Equal(t, uint64(60), s.GetBalance(addr).Uint64())

	require.NoError(t, s.Checkpoint(ctx))
	s.SubBalance(addr, uint256.NewInt(60))
	require.Equal(t, uint64(0), s.GetBalance(addr).Uint64())
	require.Equal(t, 2, s.Depth())

	// Inner revert restores the outer layer's view.
	require.NoError(t, s.Revert(ctx))
	require.Equal(t, uint64(60), s.GetBalance(addr).Uint64())
	require.Equal(t, 1, s.Depth())

	// Outer commit folds into the base.
	require.NoError(t, s.Commit(ctx))
	require.Equal(t, uint64(60), s.GetBalance(addr).Uint64())
	require.Equal(t, 0, s.Depth())
}

func TestCommitIntoParentLayer(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Checkpoint(ctx))
	require.NoError(t, s.Checkpoint(ctx))
	s.SetNonce(addr, 7)
	require.NoError(t, s.Commit(ctx))

	// The write lives in the outer layer, not the base: reverting the outer
	// checkpoint discards it.
	require.Equal(t, uint64(7), s.GetNonce(addr))
	require.NoError(t, s.Revert(ctx))
	require.Equal(t, uint64(0), s.GetNonce(addr))
}

func TestUnbalancedSettle(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.Error(t, s.Commit(ctx))
	require.Error(t, s.Revert(ctx))
}

func TestWritesWithoutCheckpointHitBase(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.AddBalance(addr, uint256.NewInt(5))

	require.NoError(t, s.Checkpoint(ctx))
	require.NoError(t, s.Revert(ctx))
	require.Equal(t, uint64(5), s.GetBalance(addr).Uint64())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	require.Error(t, s.Checkpoint(ctx))
	require.Equal(t, 0, s.Depth())
}
