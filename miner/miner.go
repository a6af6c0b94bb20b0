// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package miner assembles blocks from a live pool of pending transactions.
//
// One selection loop runs at a time: candidates are drawn from a priced heap
// holding at most one transaction per origin, executed through the VM under
// nested state checkpoints, and accumulated into a sealed block description
// that is emitted to subscribers. Re-entrant mine calls, pause/resume and
// instamine single-transaction blocks are handled by the controller.
package miner

import (
	"context"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"

	"github.com/adridadou/ganache-core/core"
	"github.com/adridadou/ganache-core/core/txpool"
	"github.com/adridadou/ganache-core/core/types"
	"github.com/adridadou/ganache-core/params"
)

// VM executes a single transaction in the context of the block under
// construction. An error return means the transaction can never succeed and
// will be finalized as rejected.
type VM interface {
	RunTx(ctx context.Context, tx *types.Transaction, block *types.Block) (*types.ExecResult, error)
}

// CreateBlockFunc mints the successor block the miner re-enters with after
// finishing one. Each call must return a fresh, immutable block.
type CreateBlockFunc func(parent *types.Block) *types.Block

// Miner drives block production for a dev chain. It is constructed once per
// chain and lives for the session.
type Miner struct {
	config      Config
	pool        *txpool.Executables
	vm          VM
	checkpoints *checkpointStack
	createBlock CreateBlockFunc

	// mu guards the controller flags below.
	mu       sync.Mutex
	isBusy   bool
	pending  bool
	paused   bool
	resumeCh chan struct{}

	// ordMu guards the ordering state below. The selection loop holds it
	// for a full iteration; re-entrant mine calls take it to absorb pool
	// arrivals between iterations.
	ordMu        sync.Mutex
	priced       pricedHeap
	origins      mapset.Set[common.Address]
	currentPrice *uint256.Int

	blockFeed event.Feed
	idleFeed  event.Feed
}

// New wires a miner against its collaborators. A zero BlockGasLimit falls
// back to the default.
func New(config Config, pool *txpool.Executables, vm VM, state StateManager, createBlock CreateBlockFunc) *Miner {
	if config.BlockGasLimit == 0 {
		config.BlockGasLimit = params.DefaultBlockGasLimit
	}
	return &Miner{
		config:       config,
		pool:         pool,
		vm:           vm,
		checkpoints:  newCheckpointStack(state),
		createBlock:  createBlock,
		origins:      mapset.NewSet[common.Address](),
		currentPrice: new(uint256.Int),
	}
}

// Mine builds one or more blocks starting from the given block and returns
// the transactions accepted into the first one.
//
// maxTransactions caps the first block's transaction count; negative means
// unlimited, zero produces an empty block. With onlyOneBlock the round stops
// after one block; otherwise the miner keeps re-entering with successor
// blocks from CreateBlock while the candidate heap refills (successor blocks
// carry at most one transaction in instamine mode).
//
// A call made while a round is running does not start a second loop: it
// raises the pending flag, absorbs pool arrivals into the candidate heap and
// returns nil immediately. If the miner is paused, Mine blocks until Resume.
func (m *Miner) Mine(ctx context.Context, block *types.Block, maxTransactions int, onlyOneBlock bool) ([]*types.Transaction, error) {
	m.mu.Lock()
	for m.paused {
		resume := m.resumeCh
		m.mu.Unlock()
		select {
		case <-resume:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		m.mu.Lock()
	}
	if m.isBusy {
		m.pending = true
		m.mu.Unlock()
		m.updatePricedHeap()
		return nil, nil
	}
	m.isBusy = true
	// Seed before releasing mu: a concurrent Mine call that observes
	// isBusy takes the pending path and calls updatePricedHeap, and that
	// must never run ahead of the seed (setPricedHeap skips locked heads
	// and replaces the backing slice, which would orphan anything a racing
	// update had already locked and pushed).
	m.setPricedHeap()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.isBusy = false
		m.pending = false
		m.mu.Unlock()
		m.idleFeed.Send(core.MinerIdleEvent{})
	}()

	var (
		first    []*types.Transaction
		firstSet bool
	)
	for {
		data, err := m.mineBlock(ctx, block, maxTransactions)
		if err != nil {
			return first, err
		}
		if !firstSet {
			first = data.Transactions
			firstSet = true
		}

		m.ordMu.Lock()
		m.currentPrice.Clear()
		m.ordMu.Unlock()

		if onlyOneBlock {
			m.reset()
			break
		}

		m.mu.Lock()
		m.pending = false
		m.mu.Unlock()

		// Absorb anything that arrived during the build; if candidates
		// remain, keep going on a successor block.
		m.updatePricedHeap()
		if m.pricedLen() == 0 {
			m.reset()
			break
		}
		block = m.createBlock(block)
		if m.config.Instamine {
			maxTransactions = 1
		} else {
			maxTransactions = -1
		}
	}
	return first, nil
}

// Pause stops the miner at the next idle boundary: a running build finishes
// its current round first, and Pause returns only once it has. Subsequent
// Mine calls block until Resume. Idempotent.
func (m *Miner) Pause() {
	m.mu.Lock()
	if m.paused {
		m.mu.Unlock()
		return
	}
	m.paused = true
	m.resumeCh = make(chan struct{})
	if !m.isBusy {
		m.mu.Unlock()
		return
	}
	// Subscribe while still holding mu: the running loop clears isBusy
	// before emitting idle, so the emission cannot have happened yet.
	idleCh := make(chan core.MinerIdleEvent, 1)
	sub := m.idleFeed.Subscribe(idleCh)
	m.mu.Unlock()
	defer sub.Unsubscribe()
	<-idleCh
}

// Resume releases a paused miner. Idempotent.
func (m *Miner) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.paused {
		return
	}
	m.paused = false
	close(m.resumeCh)
}

// Paused reports whether the miner is currently paused.
func (m *Miner) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// SubscribeMinedBlock registers a channel for sealed block events.
func (m *Miner) SubscribeMinedBlock(ch chan<- core.NewMinedBlockEvent) event.Subscription {
	return m.blockFeed.Subscribe(ch)
}

// SubscribeIdle registers a channel for idle events, posted once at the end
// of every mining round.
func (m *Miner) SubscribeIdle(ch chan<- core.MinerIdleEvent) event.Subscription {
	return m.idleFeed.Subscribe(ch)
}

// emitBlock publishes a sealed block. In legacy instamine mode the call
// returns only after every subscriber has acknowledged the block, giving
// consumers back-pressure to persist it inline.
func (m *Miner) emitBlock(data *core.BlockData) {
	if !m.config.LegacyInstamine {
		m.blockFeed.Send(core.NewMinedBlock(data, nil))
		return
	}
	ack := make(chan struct{})
	n := m.blockFeed.Send(core.NewMinedBlock(data, ack))
	for i := 0; i < n; i++ {
		<-ack
	}
}
