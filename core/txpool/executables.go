// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txpool

import (
	"bytes"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/slices"

	"github.com/adridadou/ganache-core/core/types"
)

// Executables is the live pool view the miner consumes: a mapping from
// origin to that origin's nonce-ordered queue, plus the set of transactions
// currently being mined and awaiting block persistence.
//
// Producers may add transactions at any time; the miner re-reads the mapping
// at every use site instead of snapshotting it, and asserts the per-tx
// locked lease on any head it pulls into its priced heap.
type Executables struct {
	mu      sync.RWMutex
	pending map[common.Address]*OriginHeap

	inProgress mapset.Set[*types.Transaction]
}

// NewExecutables creates an empty pool view.
func NewExecutables() *Executables {
	return &Executables{
		pending:    make(map[common.Address]*OriginHeap),
		inProgress: mapset.NewSet[*types.Transaction](),
	}
}

// Add queues a transaction under its origin. Validation against nonces and
// balances is the pool producer's business, not done here.
func (ex *Executables) Add(tx *types.Transaction) {
	ex.mu.Lock()
	origin := tx.From()
	oh := ex.pending[origin]
	if oh == nil {
		oh = new(OriginHeap)
		ex.pending[origin] = oh
	}
	ex.mu.Unlock()

	oh.Add(tx)
	log.Trace("Executable queued", "origin", origin, "nonce", tx.Nonce(), "price", tx.GasPrice())
}

// PendingFor returns the live queue for the given origin, or nil if the
// origin has none. Callers must not cache the result across blocks.
func (ex *Executables) PendingFor(origin common.Address) *OriginHeap {
	ex.mu.RLock()
	defer ex.mu.RUnlock()
	return ex.pending[origin]
}

// Origins returns the origins that currently have a queue, in a stable
// byte-wise order so iteration is deterministic within a run.
func (ex *Executables) Origins() []common.Address {
	ex.mu.RLock()
	origins := make([]common.Address, 0, len(ex.pending))
	for origin, oh := range ex.pending {
		if oh.Len() > 0 {
			origins = append(origins, origin)
		}
	}
	ex.mu.RUnlock()

	slices.SortFunc(origins, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return origins
}

// MarkInProgress records a committed transaction as being mined and arms a
// one-shot watcher that drops it again once its finalized signal fires.
func (ex *Executables) MarkInProgress(tx *types.Transaction) {
	ex.inProgress.Add(tx)
	go func() {
		<-tx.Finalized()
		ex.inProgress.Remove(tx)
	}()
}

// InProgress reports whether the transaction is currently being mined.
func (ex *Executables) InProgress(tx *types.Transaction) bool {
	return ex.inProgress.Contains(tx)
}

// InProgressCount returns the number of transactions awaiting persistence.
func (ex *Executables) InProgressCount() int {
	return ex.inProgress.Cardinality()
}
