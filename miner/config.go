// (c) 2024-2025, the ganache-core Go authors. All rights reserved.
// See the file LICENSE for licensing terms.

package miner

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/adridadou/ganache-core/params"
)

// DefaultConfig is the miner configuration used when nothing is overridden.
var DefaultConfig = Config{
	BlockGasLimit:   params.DefaultBlockGasLimit,
	Instamine:       false,
	LegacyInstamine: false,
}

// Config holds the miner's operating parameters.
type Config struct {
	// BlockGasLimit caps the cumulative gas of every produced block.
	BlockGasLimit uint64

	// Instamine limits every successor block within a mining round to a
	// single transaction.
	Instamine bool

	// LegacyInstamine makes block emission synchronous: the miner waits for
	// every subscriber to acknowledge a sealed block before moving on.
	LegacyInstamine bool
}

func (c *Config) String() string {
	return fmt.Sprintf("BlockGasLimit: %d, Instamine: %t, LegacyInstamine: %t",
		c.BlockGasLimit, c.Instamine, c.LegacyInstamine)
}

// ConfigFromViper reads the miner configuration from the given viper
// instance, falling back to DefaultConfig for unset keys.
func ConfigFromViper(v *viper.Viper) Config {
	v.SetDefault("miner.blockgaslimit", DefaultConfig.BlockGasLimit)
	v.SetDefault("miner.instamine", DefaultConfig.Instamine)
	v.SetDefault("miner.legacyinstamine", DefaultConfig.LegacyInstamine)

	return Config{
		BlockGasLimit:   v.GetUint64("miner.blockgaslimit"),
		Instamine:       v.GetBool("miner.instamine"),
		LegacyInstamine: v.GetBool("miner.legacyinstamine"),
	}
}
