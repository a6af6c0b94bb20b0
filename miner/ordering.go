// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package miner

import (
	"container/heap"

	"github.com/adridadou/ganache-core/core/types"
)

// priceHeap implements heap.Interface over transactions, highest gas price
// first. Ties break in heap order, which is deterministic within a run.
type priceHeap []*types.Transaction

func (h priceHeap) Len() int           { return len(h) }
func (h priceHeap) Less(i, j int) bool { return h[i].GasPriceCmp(h[j]) > 0 }
func (h priceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *priceHeap) Push(x any) {
	*h = append(*h, x.(*types.Transaction))
}

func (h *priceHeap) Pop() any {
	old := *h
	n := len(old)
	tx := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return tx
}

// pricedHeap is the miner's candidate heap: at most one transaction per
// origin, ordered by gas price. The one-per-origin rule is maintained by the
// selection loop through its origin set, not here.
type pricedHeap struct {
	h priceHeap
}

// Peek returns the best-priced transaction without removing it, or nil.
func (p *pricedHeap) Peek() *types.Transaction {
	if len(p.h) == 0 {
		return nil
	}
	return p.h[0]
}

// Push inserts a transaction.
func (p *pricedHeap) Push(tx *types.Transaction) {
	heap.Push(&p.h, tx)
}

// RemoveBest removes the root and reports whether a new root exists.
func (p *pricedHeap) RemoveBest() bool {
	if len(p.h) == 0 {
		return false
	}
	heap.Pop(&p.h)
	return len(p.h) > 0
}

// ReplaceBest overwrites the root with tx and sifts it down, avoiding the
// transient empty state a pop+push pair would create. Reports whether the
// heap is non-empty, which is always true after this call.
func (p *pricedHeap) ReplaceBest(tx *types.Transaction) bool {
	if len(p.h) == 0 {
		heap.Push(&p.h, tx)
		return true
	}
	p.h[0] = tx
	heap.Fix(&p.h, 0)
	return true
}

// Init replaces the heap contents with the given transactions.
func (p *pricedHeap) Init(txs []*types.Transaction) {
	p.h = append(p.h[:0], txs...)
	heap.Init(&p.h)
}

// Clear drops every transaction.
func (p *pricedHeap) Clear() {
	p.h = p.h[:0]
}

// Len returns the number of held transactions.
func (p *pricedHeap) Len() int {
	return len(p.h)
}

// items exposes the backing slice for lease cleanup on reset.
func (p *pricedHeap) items() []*types.Transaction {
	return p.h
}
