package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tsinghua-fib-lab/fuzzysim/clock"
	"github.com/tsinghua-fib-lab/fuzzysim/entity"
	"github.com/tsinghua-fib-lab/fuzzysim/entity/car"
	"github.com/tsinghua-fib-lab/fuzzysim/entity/road"
	"github.com/tsinghua-fib-lab/fuzzysim/entity/trafficlight"
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy/rulebase"
	"github.com/tsinghua-fib-lab/fuzzysim/output"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

const (
	recordTimeout = 10 * time.Second // 单次写出的超时时间
	closeTimeout  = 10 * time.Second
	// 每步耗时直方图的记录范围（微秒）
	latencyMin    = 1
	latencyMax    = 10_000_000
	latencyDigits = 3
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理时钟、道路、信号灯、车辆管理器与输出
type Context struct {
	// 任务名
	job string
	// 停止指令
	stopped   atomic.Bool
	closeOnce sync.Once

	// 时钟
	clock *clock.Clock
	// 道路
	road *road.Road
	// 信号灯
	light *trafficlight.TrafficLight
	// 车辆管理器
	carManager *car.Manager
	// 输出
	recorder output.Recorder

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 每步耗时（微秒）
	latency *hdrhistogram.Histogram
	// 上一次同步到监控指标时的统计
	lastStats entity.CarStats
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置与规则库，创建仿真所需的全部对象
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - doc: 规则库文档
//   - recorder: 输出
//
// 返回：初始化完成的Context实例，配置或规则库非法时返回错误
func NewContext(job string, c config.Config, doc *rulebase.Document, recorder output.Recorder) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	// 提前构建一次控制器，避免在运行中途因规则库错误退出
	if _, err := car.NewController(doc, rc.All.Fuzzy.IntegralSteps); err != nil {
		return nil, err
	}
	ctx := &Context{
		job:           job,
		recorder:      recorder,
		runtimeConfig: rc,
		latency:       hdrhistogram.New(latencyMin, latencyMax, latencyDigits),
	}
	ctx.clock = clock.New(rc.C.Step)
	ctx.road = road.New(rc.All.Road)
	ctx.light = trafficlight.New(rc.All.Light)
	for i, o := range rc.All.Light.PhaseOverrides {
		if err := ctx.light.CheckPhase(o.Phase, o.Remaining); err != nil {
			return nil, fmt.Errorf("config: light.phase_overrides[%d]: %w", i, err)
		}
	}
	ctx.carManager = car.NewManager(ctx, doc)
	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Road() entity.IRoad {
	return ctx.road
}

func (ctx *Context) TrafficLight() entity.ITrafficLight {
	return ctx.light
}

func (ctx *Context) CarManager() entity.ICarManager {
	return ctx.carManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Latency 每步耗时直方图（微秒）
func (ctx *Context) Latency() *hdrhistogram.Histogram {
	return ctx.latency
}

func (ctx *Context) Init() {
	ctx.clock.Init()
	ctx.carManager.Init()
	ctx.latency.Reset()
	ctx.lastStats = entity.CarStats{}

	c := ctx.runtimeConfig.All
	log.Infof("job: %s", ctx.job)
	log.Infof("road: length=%v lane_width=%v max_speed=%v", c.Road.Length, c.Road.LaneWidth, c.Road.MaxSpeed)
	log.Infof("light: %v at %v, ok=%v", ctx.light.Phases(), ctx.light.Position(), ctx.light.Ok())
	if len(c.Light.Outages) > 0 || len(c.Light.PhaseOverrides) > 0 {
		log.Infof("light schedule: outages=%v phase_overrides=%v", c.Light.Outages, c.Light.PhaseOverrides)
	}
	log.Infof("cars: %d every %vs, oncoming every %vs", c.Cars.Count, c.Cars.SpawnInterval, c.Cars.OncomingInterval)
	log.Infof("steps: [%d, %d) dt=%v", ctx.clock.START_STEP, ctx.clock.END_STEP, ctx.clock.DT)
}

// Stop 在当前步结束后停止运行，可从其他协程调用
func (ctx *Context) Stop() {
	ctx.stopped.Store(true)
}

// Close 关闭输出，多次调用只执行一次
func (ctx *Context) Close() {
	ctx.closeOnce.Do(func() {
		cctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := ctx.recorder.Close(cctx); err != nil {
			log.Errorf("failed to close recorder: %v", err)
		}
	})
}
