// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package miner

import (
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	blocksSealedMeter  = metrics.NewRegisteredMeter("miner/blocks/sealed", nil)
	txsConfirmedMeter  = metrics.NewRegisteredMeter("miner/txs/confirmed", nil)
	txsRejectedMeter   = metrics.NewRegisteredMeter("miner/txs/rejected", nil)
	txsOverflowedMeter = metrics.NewRegisteredMeter("miner/txs/overflowed", nil)

	blockBuildTimer = metrics.NewRegisteredTimer("miner/block/build", nil)

	pricedSizeGauge = metrics.NewRegisteredGauge("miner/priced/size", nil)
)
