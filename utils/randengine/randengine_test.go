package randengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReproducible(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
	ca, cb := a.Child(), b.Child()
	assert.Equal(t, ca.Uint64(), cb.Uint64())
}

func TestNormClamped(t *testing.T) {
	e := New(1)
	for i := 0; i < 1000; i++ {
		v := e.NormClamped(10, 5, 8, 12)
		assert.GreaterOrEqual(t, v, 8.)
		assert.LessOrEqual(t, v, 12.)
	}
	assert.Panics(t, func() { e.NormClamped(0, 1, 2, 1) })
}

func TestJitter(t *testing.T) {
	e := New(1)
	assert.Equal(t, 3., e.Jitter(3, 0))
	sum := 0.
	for i := 0; i < 10000; i++ {
		sum += e.Jitter(0, 0.1)
	}
	assert.InDelta(t, 0, sum/10000, 0.01)
}

func TestPTrue(t *testing.T) {
	e := New(1)
	assert.False(t, e.PTrue(0))
	assert.True(t, e.PTrue(1))
}
