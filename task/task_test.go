package task

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/fuzzysim/entity"
	"github.com/tsinghua-fib-lab/fuzzysim/entity/car"
	"github.com/tsinghua-fib-lab/fuzzysim/output"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

func testConfig() config.Config {
	return config.Config{
		Control: config.Control{
			Step: config.ControlStep{Total: 200, Interval: 0.5},
			Seed: 1,
		},
		Road:  config.Road{Length: 250},
		Light: config.Light{Position: 120, Green: 15, Yellow: 3, Red: 10},
		Cars: config.Cars{
			Count:            4,
			SpawnInterval:    5,
			SlowRatio:        0.5,
			OncomingInterval: 30,
		},
	}
}

func newTestContext(t *testing.T, c config.Config, r output.Recorder) *Context {
	doc, err := car.LoadRuleBase("")
	require.NoError(t, err)
	ctx, err := NewContext("test", c, doc, r)
	require.NoError(t, err)
	return ctx
}

func TestRun(t *testing.T) {
	r := output.NewMemoryRecorder()
	ctx := newTestContext(t, testConfig(), r)
	ctx.Run()

	assert.Equal(t, int32(200), ctx.Clock().Step)
	assert.Equal(t, int64(200), ctx.Latency().TotalCount())

	records := r.Records()
	require.NotEmpty(t, records)
	steps := lo.Uniq(lo.Map(records, func(r output.Record, _ int) int32 { return r.Step }))
	assert.Greater(t, len(steps), 50)
	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Step, int32(0))
		assert.Less(t, rec.Step, int32(200))
		assert.InDelta(t, float64(rec.Step)*0.5, rec.T, 1e-9)
		if rec.Oncoming {
			assert.Equal(t, "oncoming", rec.State)
		} else {
			assert.Contains(t, []string{"normal", "go_left_lane", "stay_left_lane", "back_to_right_lane"}, rec.State)
		}
		assert.Contains(t, []string{"green", "yellow", "red"}, rec.Light)
		assert.Contains(t, []int32{0, 1, 2}, rec.Phase)
		assert.Greater(t, rec.Remaining, 0.)
	}

	s := ctx.CarManager().Stats()
	assert.GreaterOrEqual(t, s.Spawned, int32(4))
	assert.Equal(t, s, ctx.lastStats)
}

func TestStop(t *testing.T) {
	ctx := newTestContext(t, testConfig(), output.NewMemoryRecorder())
	ctx.Stop()
	ctx.Run()
	// 停止指令在第一步结束后生效
	assert.Equal(t, int32(1), ctx.Clock().Step)
	assert.Equal(t, int64(1), ctx.Latency().TotalCount())
}

// failingRecorder 写入总是失败，关闭计数
type failingRecorder struct {
	closed int
}

func (r *failingRecorder) Record(context.Context, []output.Record) error {
	return errors.New("disk full")
}

func (r *failingRecorder) Close(context.Context) error {
	r.closed++
	return nil
}

func TestRecordError(t *testing.T) {
	c := testConfig()
	c.Control.Step.Total = 20
	r := &failingRecorder{}
	ctx := newTestContext(t, c, r)
	// 写出失败不中断仿真
	ctx.Run()
	assert.Equal(t, int32(20), ctx.Clock().Step)
	ctx.Close()
	assert.Equal(t, 1, r.closed)
}

func TestNewContextErrors(t *testing.T) {
	doc, err := car.LoadRuleBase("")
	require.NoError(t, err)

	c := testConfig()
	c.Road.Length = 0
	_, err = NewContext("bad", c, doc, output.NewMemoryRecorder())
	assert.Error(t, err)

	broken := *doc
	broken.RuleSets = broken.RuleSets[:1]
	_, err = NewContext("bad", testConfig(), &broken, output.NewMemoryRecorder())
	assert.Error(t, err)

	// 强制相位超出相位表或相位时长
	c = testConfig()
	c.Light.PhaseOverrides = []config.PhaseOverride{{Step: 1, Phase: 3, Remaining: 1}}
	_, err = NewContext("bad", c, doc, output.NewMemoryRecorder())
	assert.ErrorContains(t, err, "phase_overrides[0]")
	c.Light.PhaseOverrides = []config.PhaseOverride{{Step: 1, Phase: 0, Remaining: 20}}
	_, err = NewContext("bad", c, doc, output.NewMemoryRecorder())
	assert.ErrorContains(t, err, "phase_overrides[0]")
}

func TestLightSchedule(t *testing.T) {
	c := testConfig()
	c.Light.Outages = []config.LightOutage{{Start: 4, End: 8}}
	c.Light.PhaseOverrides = []config.PhaseOverride{{Step: 10, Phase: 2, Remaining: 6}}
	r := output.NewMemoryRecorder()
	ctx := newTestContext(t, c, r)
	ctx.Init()

	for ctx.Clock().Step < 12 {
		step := ctx.Clock().Step
		ctx.prepare()
		inOutage := step >= 4 && step < 8
		assert.Equal(t, !inOutage, ctx.light.Ok(), "step %d", step)
		if inOutage {
			assert.Equal(t, "green", ctx.light.State().String())
			assert.True(t, math.IsInf(ctx.light.RemainingT(), 1))
		}
		ctx.update()
		require.True(t, ctx.Clock().Next())
	}
	// 第10步更新阶段切到红灯并剩余6秒，第11步的snapshot已推进0.5秒
	assert.Equal(t, int32(2), ctx.light.Step())
	assert.Equal(t, entity.LightRed, ctx.light.State())
	assert.InDelta(t, 5.5, ctx.light.RemainingT(), 1e-9)

	for _, rec := range r.Records() {
		if rec.Step == 11 {
			assert.Equal(t, int32(2), rec.Phase)
			assert.Equal(t, "red", rec.Light)
			assert.InDelta(t, 5.5, rec.Remaining, 1e-9)
		}
	}
}
