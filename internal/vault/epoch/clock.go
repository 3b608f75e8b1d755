package epoch

import (
	"time"

	"github.com/pkg/errors"
)

// Clock maps unix seconds to epoch indexes of a fixed duration.
type Clock struct {
	// Genesis is the unix second epoch 0 starts at
	Genesis int64

	// Duration of one epoch in seconds
	Duration uint64
}

func NewClock(genesis int64, duration time.Duration) (*Clock, error) {
	if duration < time.Second {
		return nil, errors.Errorf("epoch duration %s is too short", duration)
	}
	return &Clock{
		Genesis:  genesis,
		Duration: uint64(duration / time.Second),
	}, nil
}

// EpochAt returns floor((ts - genesis) / duration), timestamps before genesis fall into epoch 0.
func (c *Clock) EpochAt(ts uint64) uint64 {
	if int64(ts) < c.Genesis {
		return 0
	}
	return uint64(int64(ts)-c.Genesis) / c.Duration
}

// EpochStart returns the first unix second of epoch.
func (c *Clock) EpochStart(epoch uint64) uint64 {
	return uint64(c.Genesis + int64(epoch*c.Duration))
}
