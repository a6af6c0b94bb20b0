// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/adridadou/ganache-core/core/types"
)

// BlockData is the sealed block description the miner emits once a selection
// loop finishes. Consumers persist it.
type BlockData struct {
	Transactions     []*types.Transaction
	Receipts         []*types.Receipt
	TransactionsRoot common.Hash
	ReceiptsRoot     common.Hash
	GasUsed          uint64
	Bloom            types.Bloom
	Number           uint64
	Timestamp        uint64
}

// NewMinedBlockEvent is posted when the miner seals a block. In legacy
// instamine mode the event carries an acknowledgement channel and the miner
// blocks until every subscriber has called Processed, giving consumers
// back-pressure to persist the block inline.
type NewMinedBlockEvent struct {
	Data *BlockData

	processed chan<- struct{}
}

// NewMinedBlock wraps block data into an event. processed may be nil, in
// which case the event is fire-and-forget.
func NewMinedBlock(data *BlockData, processed chan<- struct{}) NewMinedBlockEvent {
	return NewMinedBlockEvent{Data: data, processed: processed}
}

// Processed signals the miner that this subscriber has finished handling the
// block. A no-op on fire-and-forget events, so consumers may call it
// unconditionally.
func (ev NewMinedBlockEvent) Processed() {
	if ev.processed != nil {
		ev.processed <- struct{}{}
	}
}

// MinerIdleEvent is posted once at the end of every mining round (a Mine call
// that started building), after all of its blocks, or after the round failed
// without producing one.
type MinerIdleEvent struct{}
