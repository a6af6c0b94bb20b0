// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

// testFunding is one million ether in wei.
var testFunding, _ = uint256.FromDecimal("1000000000000000000000000")

// NewTestStateDB returns a fresh state store with the given accounts funded,
// verified to start at checkpoint depth zero.
func NewTestStateDB(t testing.TB, funded ...common.Address) *StateDB {
	s := New()
	for _, addr := range funded {
		s.AddBalance(addr, testFunding)
	}
	require.Zero(t, s.Depth())
	return s
}
