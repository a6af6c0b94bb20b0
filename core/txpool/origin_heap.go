// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"container/heap"
	"sync"

	"github.com/adridadou/ganache-core/core/types"
)

// nonceHeap orders a single origin's transactions by nonce, lowest first.
// Only the head is ever visible to the miner, which preserves per-origin
// nonce order across blocks.
type nonceHeap []*types.Transaction

func (h nonceHeap) Len() int           { return len(h) }
func (h nonceHeap) Less(i, j int) bool { return h[i].Nonce() < h[j].Nonce() }
func (h nonceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nonceHeap) Push(x any) {
	*h = append(*h, x.(*types.Transaction))
}

func (h *nonceHeap) Pop() any {
	old := *h
	n := len(old)
	tx := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return tx
}

// OriginHeap is one origin's live pending queue. Producers push new
// transactions while the miner peeks and removes the head, so every
// operation takes the heap lock.
type OriginHeap struct {
	mu  sync.Mutex
	txs nonceHeap
}

// Add inserts a transaction into the queue.
func (o *OriginHeap) Add(tx *types.Transaction) {
	o.mu.Lock()
	defer o.mu.Unlock()
	heap.Push(&o.txs, tx)
}

// Peek returns the lowest-nonce transaction without removing it, or nil.
func (o *OriginHeap) Peek() *types.Transaction {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.txs) == 0 {
		return nil
	}
	return o.txs[0]
}

// RemoveBest removes the head and reports whether any transaction remains.
func (o *OriginHeap) RemoveBest() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.txs) == 0 {
		return false
	}
	heap.Pop(&o.txs)
	return len(o.txs) > 0
}

// Len returns the number of queued transactions.
func (o *OriginHeap) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.txs)
}
