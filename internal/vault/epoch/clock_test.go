package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	week := 7 * 24 * time.Hour
	c, err := NewClock(1000, week)
	require.Nil(t, err)

	assert.EqualValues(t, 0, c.EpochAt(0))
	assert.EqualValues(t, 0, c.EpochAt(999))
	assert.EqualValues(t, 0, c.EpochAt(1000))
	assert.EqualValues(t, 0, c.EpochAt(1000+604799))
	assert.EqualValues(t, 1, c.EpochAt(1000+604800))
	assert.EqualValues(t, 17, c.EpochAt(c.EpochStart(17)))
	assert.EqualValues(t, 16, c.EpochAt(c.EpochStart(17)-1))
	assert.EqualValues(t, 1000+2*604800, c.EpochStart(2))
}

func TestClockMonotonic(t *testing.T) {
	c, err := NewClock(0, time.Minute)
	require.Nil(t, err)

	var last uint64
	for ts := uint64(0); ts < 3600; ts += 7 {
		e := c.EpochAt(ts)
		assert.GreaterOrEqual(t, e, last)
		last = e
	}
	assert.EqualValues(t, 59, last)
}

func TestNewClockInvalid(t *testing.T) {
	_, err := NewClock(0, 0)
	assert.NotNil(t, err)
	_, err = NewClock(0, time.Millisecond)
	assert.NotNil(t, err)
}
