// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Set of default values used when the genesis file leaves them out.
const (
	DefaultDifficulty         = 4
	DefaultAdjustmentInterval = 10
	DefaultTargetBlockTime    = 10
)

// Genesis represents the genesis file.
type Genesis struct {
	Date               time.Time       `json:"date"`                // Fixes the genesis block time, zero means the ledger creation time.
	ChainID            uint16          `json:"chain_id"`            // The chain id represents an unique id for this running instance.
	Difficulty         uint            `json:"difficulty"`          // Initial number of leading zeros needed to solve the work problem.
	AdjustmentInterval uint64          `json:"adjustment_interval"` // Number of blocks between difficulty adjustments.
	TargetBlockTime    uint64          `json:"target_block_time"`   // Seconds the network aims to spend per block.
	MiningReward       decimal.Decimal `json:"mining_reward"`       // Reward for mining a block.
}

// Default returns the genesis values used when no file is provided.
func Default() Genesis {
	return Genesis{
		ChainID:            1,
		Difficulty:         DefaultDifficulty,
		AdjustmentInterval: DefaultAdjustmentInterval,
		TargetBlockTime:    DefaultTargetBlockTime,
		MiningReward:       decimal.NewFromInt(1),
	}
}

// Timestamp returns the genesis block time in Unix milliseconds or zero
// when the date isn't fixed.
func (g Genesis) Timestamp() int64 {
	if g.Date.IsZero() {
		return 0
	}
	return g.Date.UnixMilli()
}

// TargetDuration returns the target block time as a duration.
func (g Genesis) TargetDuration() time.Duration {
	return time.Duration(g.TargetBlockTime) * time.Second
}

// =============================================================================

// Load opens and consumes the genesis file. Missing values take their
// defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if genesis.Difficulty == 0 {
		genesis.Difficulty = DefaultDifficulty
	}
	if genesis.AdjustmentInterval == 0 {
		genesis.AdjustmentInterval = DefaultAdjustmentInterval
	}
	if genesis.TargetBlockTime == 0 {
		genesis.TargetBlockTime = DefaultTargetBlockTime
	}

	return genesis, nil
}
