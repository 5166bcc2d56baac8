package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

func TestClock(t *testing.T) {
	c := New(config.ControlStep{Start: 7200, Total: 3, Interval: 0.5})
	assert.Equal(t, 3600., c.T)
	assert.Equal(t, "01:00:00", c.String())
	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, int32(7203), c.Step)
	h, m, s := c.GetHourMinuteSecond()
	assert.Equal(t, 1, h)
	assert.Equal(t, 0, m)
	assert.InDelta(t, 1.5, s, 1e-9)

	c.Init()
	assert.Equal(t, int32(7200), c.Step)
}
