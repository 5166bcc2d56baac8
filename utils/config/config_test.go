package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const sample = `
control:
  step:
    start: 0
    total: 600
    interval: 0.5
  seed: 7
road:
  length: 500
light:
  position: 300
  green: 30
  yellow: 3
  red: 20
cars:
  count: 10
  spawn_interval: 4
  slow_ratio: 0.3
`

func TestNewRuntimeConfig(t *testing.T) {
	var c Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(sample), &c))
	rc, err := NewRuntimeConfig(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rc.C.Seed)
	assert.Equal(t, DefaultLaneWidth, rc.All.Road.LaneWidth)
	assert.Equal(t, DefaultCarLength, rc.All.Cars.Length)
	assert.Equal(t, 0.3, rc.All.Cars.SlowRatio)
	// 原配置不被修改
	assert.Equal(t, 0., c.Road.LaneWidth)
}

func TestUnknownField(t *testing.T) {
	var c Config
	err := yaml.UnmarshalStrict([]byte(sample+"unknown: 1\n"), &c)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		require.NoError(t, yaml.UnmarshalStrict([]byte(sample), &c))
		return c
	}
	cases := map[string]func(c *Config){
		"interval":      func(c *Config) { c.Control.Step.Interval = 0 },
		"total":         func(c *Config) { c.Control.Step.Total = -1 },
		"road length":   func(c *Config) { c.Road.Length = 0 },
		"light outside": func(c *Config) { c.Light.Position = 600 },
		"empty cycle":   func(c *Config) { c.Light = Light{Position: 1} },
		"negative red":  func(c *Config) { c.Light.Red = -1 },
		"spawn":         func(c *Config) { c.Cars.SpawnInterval = 0 },
		"slow ratio":    func(c *Config) { c.Cars.SlowRatio = 2 },
		"steps":         func(c *Config) { c.Fuzzy.IntegralSteps = -3 },
		"empty outage":  func(c *Config) { c.Light.Outages = []LightOutage{{Start: 5, End: 5}} },
		"bad override":  func(c *Config) { c.Light.PhaseOverrides = []PhaseOverride{{Step: 1, Phase: 0}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			_, err := NewRuntimeConfig(c)
			assert.Error(t, err)
		})
	}
	c := base()
	c.Light = Light{Position: 10, Disabled: true}
	_, err := NewRuntimeConfig(c)
	assert.NoError(t, err)
}

func TestLightSchedule(t *testing.T) {
	data := strings.Replace(sample, "  red: 20\n", `  red: 20
  outages:
    - { start: 10, end: 20 }
    - { start: 40, end: 41 }
  phase_overrides:
    - { step: 5, phase: 2, remaining: 10 }
`, 1)
	var c Config
	require.NoError(t, yaml.UnmarshalStrict([]byte(data), &c))
	rc, err := NewRuntimeConfig(c)
	require.NoError(t, err)
	l := rc.All.Light
	require.Len(t, l.PhaseOverrides, 1)
	assert.Equal(t, PhaseOverride{Step: 5, Phase: 2, Remaining: 10}, l.PhaseOverrides[0])

	assert.False(t, l.InOutage(9))
	assert.True(t, l.InOutage(10))
	assert.True(t, l.InOutage(19))
	assert.False(t, l.InOutage(20))
	assert.True(t, l.InOutage(40))
	assert.False(t, l.InOutage(41))
}
