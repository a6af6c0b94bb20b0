// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

// devnode seeds a demo transaction pool and mines it empty with a
// transfer-only VM, logging every sealed block. It exercises the mine
// wiring end to end; it does not pause or resume the miner.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"

	"github.com/adridadou/ganache-core/core"
	"github.com/adridadou/ganache-core/core/state"
	"github.com/adridadou/ganache-core/core/txpool"
	"github.com/adridadou/ganache-core/core/types"
	"github.com/adridadou/ganache-core/miner"
	"github.com/adridadou/ganache-core/params"
)

func main() {
	app := &cli.App{
		Name:  "devnode",
		Usage: "mine blocks from a demo transaction pool",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "block-gas-limit",
				Usage: "gas limit of every produced block",
				Value: params.DefaultBlockGasLimit,
			},
			&cli.BoolFlag{
				Name:  "instamine",
				Usage: "limit successor blocks to one transaction each",
			},
			&cli.BoolFlag{
				Name:  "legacy-instamine",
				Usage: "wait for block consumers before mining on",
			},
			&cli.IntFlag{
				Name:  "accounts",
				Usage: "number of demo accounts",
				Value: 3,
			},
			&cli.IntFlag{
				Name:  "txs",
				Usage: "transactions queued per account",
				Value: 9,
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "log level (trace|debug|info|warn|error)",
				Value: "info",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// transferVM is a minimal VM: every transaction is a plain transfer costing
// its intrinsic gas.
type transferVM struct {
	state *state.StateDB
}

func (vm *transferVM) RunTx(_ context.Context, tx *types.Transaction, _ *types.Block) (*types.ExecResult, error) {
	gasUsed := tx.IntrinsicGas()
	cost := new(uint256.Int).Mul(tx.GasPrice(), uint256.NewInt(gasUsed))
	cost.Add(cost, tx.Value())

	from := tx.From()
	if vm.state.GetBalance(from).Lt(cost) {
		return nil, fmt.Errorf("sender doesn't have enough funds to send tx (upfront cost %v)", cost)
	}
	vm.state.SubBalance(from, cost)
	if to := tx.To(); to != nil {
		vm.state.AddBalance(*to, tx.Value())
	}
	vm.state.SetNonce(from, tx.Nonce()+1)
	return &types.ExecResult{GasUsed: gasUsed}, nil
}

func run(c *cli.Context) error {
	setupLogger(c.String("verbosity"))

	var (
		stateDB = state.New()
		pool    = txpool.NewExecutables()
		funding = new(uint256.Int).Lsh(uint256.NewInt(1), 60)
	)

	accounts := make([]common.Address, c.Int("accounts"))
	for i := range accounts {
		accounts[i] = common.BytesToAddress([]byte{0xAA, byte(i + 1)})
		stateDB.AddBalance(accounts[i], funding)
	}
	sink := common.BytesToAddress([]byte{0xFF})
	for i, from := range accounts {
		for nonce := 0; nonce < c.Int("txs"); nonce++ {
			price := uint256.NewInt(uint64(1 + (i+nonce)%7))
			pool.Add(types.NewTransaction(from, uint64(nonce), &sink,
				uint256.NewInt(1000), params.TxGas, price, nil))
		}
	}

	config := miner.Config{
		BlockGasLimit:   c.Uint64("block-gas-limit"),
		Instamine:       c.Bool("instamine"),
		LegacyInstamine: c.Bool("legacy-instamine"),
	}
	createBlock := func(parent *types.Block) *types.Block {
		return types.NewBlock(types.Header{
			ParentHash: parent.Hash(),
			Number:     parent.Number() + 1,
			GasLimit:   config.BlockGasLimit,
			Time:       parent.Time() + 1,
		})
	}

	m := miner.New(config, pool, &transferVM{state: stateDB}, stateDB, createBlock)

	blockCh := make(chan core.NewMinedBlockEvent, 16)
	sub := m.SubscribeMinedBlock(blockCh)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for ev := range blockCh {
			for _, tx := range ev.Data.Transactions {
				tx.Finalize(types.TxStatusConfirmed, nil)
			}
			log.Info("Persisted block", "number", ev.Data.Number,
				"txs", len(ev.Data.Transactions), "gas", ev.Data.GasUsed,
				"txRoot", ev.Data.TransactionsRoot)
			ev.Processed()
		}
	}()

	genesis := types.NewBlock(types.Header{Number: 1, GasLimit: config.BlockGasLimit, Time: 1})
	accepted, err := m.Mine(c.Context, createBlock(genesis), -1, false)
	if err != nil {
		return err
	}
	log.Info("Mining round finished", "firstBlockTxs", len(accepted))

	sub.Unsubscribe()
	close(blockCh)
	<-consumerDone
	return nil
}

func setupLogger(verbosity string) {
	level := log.LevelInfo
	switch verbosity {
	case "trace":
		level = log.LevelTrace
	case "debug":
		level = log.LevelDebug
	case "warn":
		level = log.LevelWarn
	case "error":
		level = log.LevelError
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}
