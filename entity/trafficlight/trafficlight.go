package trafficlight

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/fuzzysim/entity"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

// 灯态编码：每种灯色在[0,8)上占据的区间 [start, start+span)，绿灯跨越8回到0
var statusSpans = map[entity.LightState][2]float64{
	entity.LightGreen:     {7.5, 2.5},
	entity.LightYellow:    {2, 2},
	entity.LightRed:       {4, 2},
	entity.LightRedYellow: {6, 1.5},
}

// 信号灯失效时的灯态编码（常绿）
const steadyGreenStatus = 0.5

// Phase 相位
type Phase struct {
	State    entity.LightState
	Duration float64 // 持续时间（秒）
}

// tlRuntime 信号灯运行时数据
type tlRuntime struct {
	step       int32   // 当前相位
	remainingT float64 // 当前相位剩余时间
}

// TrafficLight 停止线处的定周期信号灯
// 功能：按相位顺序循环切换，采用snapshot/runtime双缓冲，
// 更新阶段读取的始终是准备阶段写入的snapshot
type TrafficLight struct {
	position float64
	phases   []Phase

	snapshot tlRuntime  // snapshot，供读取
	runtime  tlRuntime  // 运行时数据
	buffer   *tlRuntime // 交互式写入的数据buffer，下一次更新时生效
	ok       bool       // true为正常工作，false为失效（常绿）
	okBuffer bool
}

// New 根据配置创建信号灯
// 说明：时长为0的相位被跳过，配置为失效或没有有效相位时信号灯常绿
func New(c config.Light) *TrafficLight {
	phases := make([]Phase, 0, 4)
	for _, p := range []Phase{
		{entity.LightGreen, c.Green},
		{entity.LightYellow, c.Yellow},
		{entity.LightRed, c.Red},
		{entity.LightRedYellow, c.RedYellow},
	} {
		if p.Duration > 0 {
			phases = append(phases, p)
		}
	}
	ok := !c.Disabled && len(phases) > 0
	if !ok {
		log.Warnf("traffic light at %v is disabled, always green", c.Position)
	}
	l := &TrafficLight{
		position: c.Position,
		phases:   phases,
		ok:       ok,
		okBuffer: ok,
	}
	if len(phases) > 0 {
		l.runtime = tlRuntime{step: 0, remainingT: phases[0].Duration}
		if c.Offset > 0 {
			l.advance(math.Mod(c.Offset, l.cycle()))
		}
	}
	l.snapshot = l.runtime
	return l
}

func (l *TrafficLight) cycle() float64 {
	t := 0.
	for _, p := range l.phases {
		t += p.Duration
	}
	return t
}

// Prepare 准备阶段，写入snapshot
func (l *TrafficLight) Prepare() {
	l.ok = l.okBuffer && len(l.phases) > 0
	l.snapshot = l.runtime
}

// Update 更新阶段，推进相位
func (l *TrafficLight) Update(dt float64) {
	if l.buffer != nil {
		l.runtime = *l.buffer
		l.buffer = nil
	}
	if !l.ok {
		return
	}
	l.advance(dt)
}

// advance 剩余时间耗尽时依次切换到下一相位
func (l *TrafficLight) advance(dt float64) {
	l.runtime.remainingT -= dt
	for l.runtime.remainingT <= 0 {
		l.runtime.step = (l.runtime.step + 1) % int32(len(l.phases))
		l.runtime.remainingT += l.phases[l.runtime.step].Duration
	}
}

// CheckPhase 检查相位索引与剩余时间是否可被SetPhase接受
func (l *TrafficLight) CheckPhase(step int32, remainingT float64) error {
	if step < 0 || int(step) >= len(l.phases) {
		return fmt.Errorf("trafficlight: phase %d out of range [0, %d)", step, len(l.phases))
	}
	if remainingT <= 0 || remainingT > l.phases[step].Duration {
		return fmt.Errorf("trafficlight: remaining time %v out of (0, %v]", remainingT, l.phases[step].Duration)
	}
	return nil
}

// SetPhase 设置相位索引与剩余时间，下一次更新时生效
func (l *TrafficLight) SetPhase(step int32, remainingT float64) error {
	if err := l.CheckPhase(step, remainingT); err != nil {
		return err
	}
	l.buffer = &tlRuntime{step: step, remainingT: remainingT}
	return nil
}

// SetOk 设置信号灯开关，false表示失效（常绿），下一次准备阶段生效
func (l *TrafficLight) SetOk(ok bool) {
	l.okBuffer = ok
}

func (l *TrafficLight) Ok() bool {
	return l.ok
}

func (l *TrafficLight) Position() float64 {
	return l.position
}

// Phases 相位表
func (l *TrafficLight) Phases() []Phase {
	return l.phases
}

// Step 当前相位索引
func (l *TrafficLight) Step() int32 {
	return l.snapshot.step
}

// State 当前灯色
func (l *TrafficLight) State() entity.LightState {
	if !l.ok {
		return entity.LightGreen
	}
	return l.phases[l.snapshot.step].State
}

// RemainingT 当前灯色剩余时间，失效时为无穷大
func (l *TrafficLight) RemainingT() float64 {
	if !l.ok {
		return mathutil.INF
	}
	return l.snapshot.remainingT
}

// Status 灯态编码
// 功能：把当前灯色与相位进度映射到[0,8)
// 算法说明：
// 1. 进度 = 1 - 剩余时间/相位时长，取值[0,1)
// 2. 灯态 = 区间起点 + 进度*区间长度，对8取模
// 说明：绿灯中段落在[0,1]，绿灯末段（将变黄）在(1,2)，黄灯[2,4)，红灯[4,6)，红黄灯[6,7.5)
func (l *TrafficLight) Status() float64 {
	if !l.ok {
		return steadyGreenStatus
	}
	p := l.phases[l.snapshot.step]
	progress := 1 - l.snapshot.remainingT/p.Duration
	span := statusSpans[p.State]
	return math.Mod(span[0]+progress*span[1], 8)
}
