package memory

import (
	"time"

	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/contexts/governance/voting-engine/ports"
)

// TickingClock derives a block height from wall time while host-chain block
// feed wiring is finalized. Height is elapsed time since genesis divided by
// the block interval, which keeps it monotonically non-decreasing.
type TickingClock struct {
	Genesis       time.Time
	BlockInterval time.Duration
}

func (c TickingClock) CurrentBlock() entities.BlockNumber {
	interval := c.BlockInterval
	if interval <= 0 {
		interval = 6 * time.Second
	}
	elapsed := time.Since(c.Genesis)
	if elapsed < 0 {
		return 0
	}
	return entities.BlockNumber(elapsed / interval)
}

var _ ports.BlockClock = TickingClock{}
