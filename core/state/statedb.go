// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var errNoCheckpoint = errors.New("commit/revert without a matching checkpoint")

// Account is the in-memory account record of the dev chain.
type Account struct {
	Nonce   uint64
	Balance *uint256.Int
	Code    []byte
	Storage map[common.Hash]common.Hash
}

func (a *Account) copy() *Account {
	cpy := &Account{
		Nonce:   a.Nonce,
		Balance: a.Balance.Clone(),
		Code:    a.Code,
		Storage: make(map[common.Hash]common.Hash, len(a.Storage)),
	}
	for k, v := range a.Storage {
		cpy.Storage[k] = v
	}
	return cpy
}

// StateDB is a journaled in-memory state store with the checkpoint, commit
// and revert primitives the miner sequences its work through. Checkpoints
// nest: each one pushes a fresh overlay, commit folds the top overlay into
// the layer below, revert drops it.
type StateDB struct {
	mu sync.Mutex

	base   map[common.Address]*Account
	layers []map[common.Address]*Account
}

// New creates an empty state store.
func New() *StateDB {
	return &StateDB{base: make(map[common.Address]*Account)}
}

// Checkpoint opens a new nesting level.
func (s *StateDB) Checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = append(s.layers, make(map[common.Address]*Account))
	return nil
}

// Commit folds the top overlay into the layer below it (or into the base).
func (s *StateDB) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.layers)
	if n == 0 {
		return errNoCheckpoint
	}
	top := s.layers[n-1]
	s.layers = s.layers[:n-1]

	dst := s.base
	if n > 1 {
		dst = s.layers[n-2]
	}
	for addr, acct := range top {
		dst[addr] = acct
	}
	return nil
}

// Revert drops the top overlay, discarding every write since the matching
// checkpoint.
func (s *StateDB) Revert(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.layers)
	if n == 0 {
		return errNoCheckpoint
	}
	s.layers = s.layers[:n-1]
	return nil
}

// Depth returns the number of open checkpoints.
func (s *StateDB) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// account reads through the overlays without copying. Caller holds s.mu.
func (s *StateDB) account(addr common.Address) *Account {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if acct, ok := s.layers[i][addr]; ok {
			return acct
		}
	}
	return s.base[addr]
}

// mutable returns a copy of the account in the top layer, creating the
// account if needed. Caller holds s.mu.
func (s *StateDB) mutable(addr common.Address) *Account {
	var dst map[common.Address]*Account
	if n := len(s.layers); n > 0 {
		dst = s.layers[n-1]
	} else {
		dst = s.base
	}
	if acct, ok := dst[addr]; ok {
		return acct
	}
	var cpy *Account
	if acct := s.account(addr); acct != nil {
		cpy = acct.copy()
	} else {
		cpy = &Account{Balance: new(uint256.Int), Storage: make(map[common.Hash]common.Hash)}
	}
	dst[addr] = cpy
	return cpy
}

// GetBalance returns the account balance, zero for unknown accounts.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct := s.account(addr); acct != nil {
		return acct.Balance.Clone()
	}
	return new(uint256.Int)
}

// AddBalance credits the account.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.mutable(addr)
	acct.Balance = new(uint256.Int).Add(acct.Balance, amount)
}

// SubBalance debits the account.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.mutable(addr)
	acct.Balance = new(uint256.Int).Sub(acct.Balance, amount)
}

// GetNonce returns the account nonce.
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct := s.account(addr); acct != nil {
		return acct.Nonce
	}
	return 0
}

// SetNonce sets the account nonce.
func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutable(addr).Nonce = nonce
}
