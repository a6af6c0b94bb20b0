// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package miner

import (
	"context"
	"fmt"
)

// StateManager is the collaborator the miner sequences EVM state through.
// The dev node's in-memory store implements it; so could any journaled
// state database.
type StateManager interface {
	Checkpoint(ctx context.Context) error
	Commit(ctx context.Context) error
	Revert(ctx context.Context) error
}

// checkpointStack sequences the state manager's primitives. The miner holds
// at most two nesting levels: an outer block-level checkpoint around the
// whole selection loop and an inner transaction-level one around each VM
// execution.
type checkpointStack struct {
	state StateManager
}

func newCheckpointStack(state StateManager) *checkpointStack {
	return &checkpointStack{state: state}
}

// checkpoint opens a nesting level and returns its handle. Every handle is
// settled exactly once; close reverts a handle left unsettled, so early
// exits cannot unbalance the stack.
func (cs *checkpointStack) checkpoint(ctx context.Context) (*checkpoint, error) {
	if err := cs.state.Checkpoint(ctx); err != nil {
		return nil, fmt.Errorf("state checkpoint: %w", err)
	}
	return &checkpoint{stack: cs}, nil
}

type checkpoint struct {
	stack   *checkpointStack
	settled bool
}

func (c *checkpoint) commit(ctx context.Context) error {
	if c.settled {
		return nil
	}
	c.settled = true
	if err := c.stack.state.Commit(ctx); err != nil {
		return fmt.Errorf("state commit: %w", err)
	}
	return nil
}

func (c *checkpoint) revert(ctx context.Context) error {
	if c.settled {
		return nil
	}
	c.settled = true
	if err := c.stack.state.Revert(ctx); err != nil {
		return fmt.Errorf("state revert: %w", err)
	}
	return nil
}

func (c *checkpoint) close(ctx context.Context) error {
	if c.settled {
		return nil
	}
	return c.revert(ctx)
}
