package task

import (
	"context"
	"flag"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/fuzzysim/entity/car"
	"github.com/tsinghua-fib-lab/fuzzysim/output"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// applyLightSchedule 按配置的失效时段与强制相位操作信号灯
// 说明：开关在本步准备阶段生效，强制相位在本步更新阶段生效
func (ctx *Context) applyLightSchedule() {
	c := ctx.runtimeConfig.All.Light
	step := ctx.clock.Step
	ok := !c.Disabled && !c.InOutage(step)
	if ok != ctx.light.Ok() {
		log.Infof("step %d: traffic light ok=%v", step, ok)
	}
	ctx.light.SetOk(ok)
	for _, o := range c.PhaseOverrides {
		if o.Step != step {
			continue
		}
		if err := ctx.light.SetPhase(o.Phase, o.Remaining); err != nil {
			log.Errorf("step %d: failed to override light phase: %v", step, err)
			continue
		}
		log.Infof("step %d: light phase set to %d with %vs remaining", step, o.Phase, o.Remaining)
	}
}

// prepare 准备阶段，每步执行一次
// 算法说明：
// 1. 心跳日志：定期输出仿真时间与车辆统计
// 2. 信号灯计划：失效时段与强制相位
// 3. 并行准备：信号灯与车辆管理器写入各自的snapshot
//
// 说明：确保所有对象在更新阶段前都处于一致的状态
func (ctx *Context) prepare() {
	if *heartBeatInterval > 0 && ctx.clock.Step%int32(*heartBeatInterval) == 0 {
		s := ctx.carManager.Stats()
		log.Infof(
			"STEP: %d(%s) light=%v cars=%d finished=%d overtakes=%d",
			ctx.clock.Step, ctx.clock,
			ctx.light.State(), len(ctx.carManager.Data()), s.Finished, s.Overtakes,
		)
	}
	ctx.applyLightSchedule()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.light.Prepare() // light
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.carManager.Prepare() // car
	}()
	wg.Wait()
}

// update 更新阶段，每步执行一次
// 算法说明：
// 1. 并行更新：信号灯推进相位，车辆基于snapshot决策并推进运动学
// 2. 输出：记录本步开始时各车辆的状态与本步的决策
// 3. 同步监控指标
func (ctx *Context) update() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.light.Update(ctx.clock.DT) // light
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.carManager.Update(ctx.clock.DT) // car
	}()
	wg.Wait()

	ctx.record()
	ctx.observe()
}

// record 写出本步全部车辆的记录
func (ctx *Context) record() {
	cars := ctx.carManager.Data()
	if len(cars) == 0 {
		return
	}
	light := ctx.light.State().String()
	phase, remaining := ctx.light.Step(), ctx.light.RemainingT()
	records := lo.Map(cars, func(c *car.Car, _ int) output.Record {
		d := c.LastDecision()
		return output.Record{
			Step:      ctx.clock.Step,
			T:         ctx.clock.T,
			ID:        c.ID(),
			X:         c.X(),
			Y:         c.Y(),
			V:         c.V(),
			Oncoming:  c.Oncoming(),
			State:     c.ControlState(),
			Steering:  d.Steering,
			Speed:     d.Speed,
			Light:     light,
			Phase:     phase,
			Remaining: remaining,
		}
	})
	rctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := ctx.recorder.Record(rctx, records); err != nil {
		log.Errorf("step %d: failed to record %d cars: %v", ctx.clock.Step, len(records), err)
	}
}

// Run 运行
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	for {
		start := time.Now()
		ctx.prepare()
		log.Debugf("step %d: prepare complete", ctx.clock.Step)
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.Step)
		if err := ctx.latency.RecordValue(time.Since(start).Microseconds()); err != nil {
			log.Warnf("step %d: %v", ctx.clock.Step, err)
		}
		if !ctx.clock.Next() || ctx.stopped.Load() {
			break
		}
	}
	ctx.summary()
	log.Infof("engine complete")
	ctx.Close()
}

// summary 输出运行统计
func (ctx *Context) summary() {
	s := ctx.carManager.Stats()
	log.Infof(
		"cars: spawned=%d finished=%d overtakes=%d red_light_runs=%d",
		s.Spawned, s.Finished, s.Overtakes, s.RedLightRuns,
	)
	log.Infof("controller: evaluations=%d non_finite=%d", s.Evaluations, s.NonFinite)
	h := ctx.latency
	log.Infof(
		"step latency (us): n=%d mean=%.1f p50=%d p90=%d p99=%d max=%d",
		h.TotalCount(), h.Mean(),
		h.ValueAtQuantile(50), h.ValueAtQuantile(90), h.ValueAtQuantile(99), h.Max(),
	)
}
