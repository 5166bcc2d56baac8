package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegral(t *testing.T) {
	s := areaIntegral(0, 1, 2, 3)
	assert.Equal(t, 2.5, s)
	assert.InDelta(t, 0.53333336, momentIntegral(0, 1, 2, 3)/s, 1e-7)
}

func TestIntegralConstant(t *testing.T) {
	// y恒为1时，∫x dx = (x2²-x1²)/2
	assert.InDelta(t, 1.5, momentIntegral(1, 2, 1, 1), 1e-12)
	assert.InDelta(t, 1.0, areaIntegral(1, 2, 1, 1), 1e-12)
	assert.Equal(t, 0.0, momentIntegral(3, 3, 1, 0.5))
}

func TestDefuzzifySteps(t *testing.T) {
	// y=x在[0,1]上的重心为2/3，线性包络与步数无关
	for _, steps := range []int{1, 7, 40, 100} {
		e := NewWithIntegralSteps(steps)
		out := e.AddOutput(0, 1)
		os, err := e.AddOutputSet(out, Linear{Slope: 1})
		assert.NoError(t, err)
		r, err := e.AddRule(nil, os)
		assert.NoError(t, err)
		rs, err := e.AddRuleSet([]RuleID{r})
		assert.NoError(t, err)
		assert.NoError(t, e.Evaluate(rs))
		v, err := e.Output(out)
		assert.NoError(t, err)
		assert.InDelta(t, 2.0/3, v, 1e-12, "steps %d", steps)
	}
}
