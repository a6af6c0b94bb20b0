// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package miner

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"
	"golang.org/x/sync/errgroup"

	"github.com/adridadou/ganache-core/core"
	"github.com/adridadou/ganache-core/core/types"
	"github.com/adridadou/ganache-core/params"
)

// environment is the per-block assembler: the accepted transactions in
// commit order, their receipts, the running gas and bloom accumulators, and
// the buffered trie entries derived at terminate phase.
type environment struct {
	number    uint64
	timestamp uint64

	gasLeft uint64
	gasUsed uint64 // cumulative
	tcount  int

	txs      []*types.Transaction
	receipts []*types.Receipt
	bloom    types.Bloom

	txEntries      [][]byte
	receiptEntries [][]byte

	start time.Time // time that block building began
}

func newEnvironment(block *types.Block, gasLimit uint64) *environment {
	return &environment{
		number:    block.Number(),
		timestamp: block.Time(),
		gasLeft:   gasLimit,
		txs:       make([]*types.Transaction, 0),
		receipts:  make([]*types.Receipt, 0),
		start:     time.Now(),
	}
}

// add records an accepted transaction: ordering, receipt, gas, bloom and the
// serialized trie entries, keyed later by rlp(index).
func (env *environment) add(tx *types.Transaction, res *types.ExecResult) error {
	env.gasLeft -= res.GasUsed
	env.gasUsed += res.GasUsed

	receipt := tx.FillFromResult(res, env.gasUsed)
	receiptBytes, err := receipt.MarshalBinary()
	if err != nil {
		return err
	}
	env.txs = append(env.txs, tx)
	env.receipts = append(env.receipts, receipt)
	env.bloom.Or(res.Bloom)
	env.txEntries = append(env.txEntries, tx.Serialize())
	env.receiptEntries = append(env.receiptEntries, receiptBytes)
	env.tcount++
	return nil
}

// deriveTries builds the transactions trie and the receipt trie from the
// buffered entries. The two derivations run concurrently; both roots are
// available once this returns, so the block-level commit never overlaps trie
// construction.
func (env *environment) deriveTries() (txRoot, receiptRoot common.Hash, err error) {
	var g errgroup.Group
	g.Go(func() error {
		var derr error
		txRoot, derr = deriveRoot(env.txEntries)
		return derr
	})
	g.Go(func() error {
		var derr error
		receiptRoot, derr = deriveRoot(env.receiptEntries)
		return derr
	})
	err = g.Wait()
	return txRoot, receiptRoot, err
}

// deriveRoot computes the root of a Merkle-Patricia trie keyed by
// rlp(index). A stack trie wants its keys in ascending order, so the
// single-byte keys 1..0x7f go in first, then index 0 (whose key rlp(0) is
// 0x80 and sorts after them), then the two-byte keys from 0x80 on.
func deriveRoot(values [][]byte) (common.Hash, error) {
	t := trie.NewStackTrie(nil)
	var buf []byte
	for i := 1; i < len(values) && i <= 0x7f; i++ {
		buf = rlp.AppendUint64(buf[:0], uint64(i))
		if err := t.Update(buf, values[i]); err != nil {
			return common.Hash{}, err
		}
	}
	if len(values) > 0 {
		buf = rlp.AppendUint64(buf[:0], 0)
		if err := t.Update(buf, values[0]); err != nil {
			return common.Hash{}, err
		}
	}
	for i := 0x80; i < len(values); i++ {
		buf = rlp.AppendUint64(buf[:0], uint64(i))
		if err := t.Update(buf, values[i]); err != nil {
			return common.Hash{}, err
		}
	}
	return t.Hash(), nil
}

// mineBlock runs one full selection loop under the block-level checkpoint
// and emits the sealed block description.
func (m *Miner) mineBlock(ctx context.Context, block *types.Block, maxTransactions int) (*core.BlockData, error) {
	env := newEnvironment(block, m.config.BlockGasLimit)

	// Even a zero-transaction build opens and settles the block checkpoint,
	// preserving pairing.
	blockCP, err := m.checkpoints.checkpoint(ctx)
	if err != nil {
		return nil, err
	}
	defer blockCP.close(ctx)

	if maxTransactions != 0 {
		if err := m.commitTransactions(ctx, env, block, maxTransactions); err != nil {
			return nil, err
		}
	}

	txRoot, receiptRoot, err := env.deriveTries()
	if err != nil {
		return nil, err
	}
	if err := blockCP.commit(ctx); err != nil {
		return nil, err
	}

	data := &core.BlockData{
		Transactions:     env.txs,
		Receipts:         env.receipts,
		TransactionsRoot: txRoot,
		ReceiptsRoot:     receiptRoot,
		GasUsed:          env.gasUsed,
		Bloom:            env.bloom,
		Number:           env.number,
		Timestamp:        env.timestamp,
	}

	blocksSealedMeter.Mark(1)
	blockBuildTimer.UpdateSince(env.start)
	log.Info("Sealed block", "number", env.number, "txs", env.tcount,
		"gas", env.gasUsed, "elapsed", common.PrettyDuration(time.Since(env.start)))

	m.emitBlock(data)
	return data, nil
}

// commitTransactions is the main selection iteration: pick the best-priced
// candidate, execute it under a transaction-level checkpoint, and either
// commit it into the block or put it back in play. The ordering lock is held
// for each full iteration so the heap root cannot move underneath a
// decision; concurrent pool arrivals are absorbed between iterations and
// between blocks.
func (m *Miner) commitTransactions(ctx context.Context, env *environment, block *types.Block, maxTransactions int) error {
	for {
		m.ordMu.Lock()
		best := m.priced.Peek()
		if best == nil {
			m.ordMu.Unlock()
			break
		}
		origin := best.From()

		// A transaction whose intrinsic gas exceeds the remaining block gas
		// cannot fit in any later position either. Nonce order forbids
		// reordering within the origin, so the whole origin sits out the
		// rest of this block; the transaction stays in the pool.
		if best.IntrinsicGas() > env.gasLeft {
			log.Trace("Not enough gas left for origin", "origin", origin,
				"hash", best.Hash(), "left", env.gasLeft)
			m.priced.RemoveBest()
			best.SetLocked(false)
			m.origins.Remove(origin)
			m.ordMu.Unlock()
			continue
		}

		m.currentPrice.Set(best.GasPrice())

		txCP, err := m.checkpoints.checkpoint(ctx)
		if err != nil {
			m.ordMu.Unlock()
			return err
		}

		res := m.runTx(ctx, best, block)
		if res == nil {
			// The VM threw; runTx already advanced the pool and the heap.
			err := txCP.revert(ctx)
			m.ordMu.Unlock()
			if err != nil {
				return err
			}
			continue
		}

		if res.GasUsed > env.gasLeft {
			// Doesn't fit. The transaction goes back to the pool usable in
			// a future block; its origin sits out the rest of this one.
			log.Trace("Transaction overflows block gas", "hash", best.Hash(),
				"used", res.GasUsed, "left", env.gasLeft)
			txsOverflowedMeter.Mark(1)
			err := txCP.revert(ctx)
			best.SetLocked(false)
			m.priced.RemoveBest()
			m.origins.Remove(origin)
			m.ordMu.Unlock()
			if err != nil {
				return err
			}
			continue
		}

		// Fits.
		if err := txCP.commit(ctx); err != nil {
			m.ordMu.Unlock()
			return err
		}
		if err := env.add(best, res); err != nil {
			m.ordMu.Unlock()
			return err
		}
		txsConfirmedMeter.Mark(1)
		log.Trace("Committed transaction", "hash", best.Hash(), "origin", origin,
			"gas", res.GasUsed, "left", env.gasLeft)

		if pendingOrigin := m.pool.PendingFor(origin); pendingOrigin != nil {
			pendingOrigin.RemoveBest()
		}
		m.pool.MarkInProgress(best)
		best.SetLocked(false)

		if env.gasLeft <= params.TxGas || env.tcount == maxTransactions {
			// The gas left is at or below a plain transfer's cost (or the
			// cap is reached): stop selecting, but preserve the next-best of
			// this origin for the next block.
			m.refillFromPool(origin)
			m.ordMu.Unlock()
			break
		}
		m.refillFromPool(origin)
		m.ordMu.Unlock()
	}
	return nil
}

// refillFromPool swaps the heap root for the origin's current pool head, or
// drops the origin when the pool has nothing left for it. Caller holds the
// ordering lock and has already consumed the previous head.
func (m *Miner) refillFromPool(origin common.Address) {
	if pendingOrigin := m.pool.PendingFor(origin); pendingOrigin != nil {
		if next := pendingOrigin.Peek(); next != nil {
			next.SetLocked(true)
			m.priced.ReplaceBest(next)
			return
		}
	}
	m.priced.RemoveBest()
	m.origins.Remove(origin)
}

// runTx executes the transaction through the VM. A VM error means the
// transaction can never succeed: it is dropped from the pool, finalized as
// rejected with a synthetic zero-PC trace, and its origin advances to the
// next nonce. Returns nil in that case; the caller reverts the transaction
// checkpoint and moves on.
func (m *Miner) runTx(ctx context.Context, tx *types.Transaction, block *types.Block) *types.ExecResult {
	res, err := m.vm.RunTx(ctx, tx, block)
	if err == nil {
		return res
	}

	origin := tx.From()
	log.Debug("Transaction rejected by VM", "hash", tx.Hash(), "err", err)

	if pendingOrigin := m.pool.PendingFor(origin); pendingOrigin != nil {
		pendingOrigin.RemoveBest()
	}
	m.refillFromPool(origin)

	tx.SetLocked(false)
	tx.FillRejected(err.Error())
	tx.Finalize(types.TxStatusRejected, types.NewExecutionError(tx.Hash(), err))
	txsRejectedMeter.Mark(1)
	return nil
}

// setPricedHeap rebuilds the candidate heap from the live pool: one locked
// head per origin.
func (m *Miner) setPricedHeap() {
	m.ordMu.Lock()
	defer m.ordMu.Unlock()

	m.origins.Clear()
	seed := make([]*types.Transaction, 0)
	for _, origin := range m.pool.Origins() {
		pendingOrigin := m.pool.PendingFor(origin)
		if pendingOrigin == nil {
			continue
		}
		head := pendingOrigin.Peek()
		if head == nil || head.Locked() {
			continue
		}
		head.SetLocked(true)
		m.origins.Add(origin)
		seed = append(seed, head)
	}
	m.priced.Init(seed)
	pricedSizeGauge.Update(int64(m.priced.Len()))
}

// updatePricedHeap absorbs pool arrivals without breaking the
// one-slot-per-origin rule and without letting a newly-arrived lower-priced
// transaction preempt an in-progress sweep.
func (m *Miner) updatePricedHeap() {
	m.ordMu.Lock()
	defer m.ordMu.Unlock()

	for _, origin := range m.pool.Origins() {
		pendingOrigin := m.pool.PendingFor(origin)
		if pendingOrigin == nil {
			continue
		}
		head := pendingOrigin.Peek()
		if head == nil || head.Locked() {
			continue
		}
		if head.GasPriceIntCmp(m.currentPrice) < 0 {
			continue
		}
		if m.origins.Contains(origin) {
			continue
		}
		head.SetLocked(true)
		m.origins.Add(origin)
		m.priced.Push(head)
	}
	pricedSizeGauge.Update(int64(m.priced.Len()))
}

// reset releases every remaining lease and empties the ordering state.
func (m *Miner) reset() {
	m.ordMu.Lock()
	defer m.ordMu.Unlock()

	for _, tx := range m.priced.items() {
		tx.SetLocked(false)
	}
	m.priced.Clear()
	m.origins.Clear()
	m.currentPrice.Clear()
	pricedSizeGauge.Update(0)
}

func (m *Miner) pricedLen() int {
	m.ordMu.Lock()
	defer m.ordMu.Unlock()
	return m.priced.Len()
}
