// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package miner

// PricedHeap exposes the miner's candidate heap for external tooling.
type PricedHeap = pricedHeap

// NewPricedHeap returns an empty priced heap.
func NewPricedHeap() *PricedHeap {
	return new(pricedHeap)
}
