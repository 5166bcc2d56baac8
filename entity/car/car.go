package car

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/fuzzysim/entity"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/container"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/randengine"
)

// 运动学参数
const (
	maxAcc          = 3.0  // 最大加速度（米/秒²）
	maxDec          = 6.0  // 最大减速度（米/秒²）
	maxLateralSpeed = 1.5  // 最大横向速度（米/秒）
	lateralPerSpeed = 0.25 // 横向速度上限与纵向速度之比
	stopThreshold   = 0.05 // 速度输出低于该值时视为停车
	minGap          = 2.0  // 与前车的最小车距（米）
	timeHeadway     = 1.2  // 安全车头时距（秒）
	noTarget        = -1   // 没有被超车辆
	targetLost      = -100 // 被超车辆已驶离时的纵向位置
)

// carRuntime 车辆运行时数据
type carRuntime struct {
	x, y, v float64
}

// Car 车辆实体
// 功能：本向车辆由模糊控制器驱动；对向车辆在左侧车道匀速行驶，不参与控制
// 说明：x为车头位置，本向车辆沿x正方向行驶，对向车辆沿x负方向行驶
type Car struct {
	container.IncrementalItemBase

	m *Manager

	id       int32
	length   float64
	maxV     float64 // 期望最大速度
	oncoming bool

	controller *Controller
	rng        *randengine.Engine

	snapshot carRuntime // 准备阶段写入，更新阶段供其他车辆读取
	runtime  carRuntime

	decision    Decision
	target      int32 // 被超车辆ID
	passedLight bool
}

func (c *Car) ID() int32 {
	return c.id
}

func (c *Car) X() float64 {
	return c.snapshot.x
}

func (c *Car) Y() float64 {
	return c.snapshot.y
}

func (c *Car) V() float64 {
	return c.snapshot.v
}

func (c *Car) Length() float64 {
	return c.length
}

func (c *Car) Oncoming() bool {
	return c.oncoming
}

// ControlState 控制器状态名，对向车辆为"oncoming"
func (c *Car) ControlState() string {
	if c.controller == nil {
		return "oncoming"
	}
	return c.controller.State().String()
}

// LastDecision 最近一次决策
func (c *Car) LastDecision() Decision {
	return c.decision
}

func (c *Car) prepare() {
	c.snapshot = c.runtime
}

// sense 基于snapshot计算本车观测
// 返回：观测值与同车道前车（可能为nil）
func (c *Car) sense() (Sensors, *Car) {
	road := c.m.ctx.Road()
	light := c.m.ctx.TrafficLight()
	noise := c.m.sensorNoise
	x, y := c.snapshot.x, c.snapshot.y
	lane := road.LaneOf(y)

	s := Sensors{
		Deviation:        c.rng.Jitter(road.Deviation(lane, y), noise),
		LeftDeviation:    c.rng.Jitter(road.Deviation(entity.LaneLeft, y), noise),
		RoadDeviation:    c.rng.Jitter(road.Deviation(entity.LaneRight, y), noise),
		Distance:         mathutil.INF,
		LightStatus:      light.Status(),
		CarDistance:      mathutil.INF,
		CarVelocity:      road.MaxSpeed(),
		OppositeDistance: mathutil.INF,
		SideDeviation:    targetLost,
	}
	if d := light.Position() - x; !c.passedLight && d >= 0 {
		s.Distance = d
	}
	ahead := c.m.ahead(c, lane)
	if ahead != nil {
		s.CarDistance = ahead.snapshot.x - ahead.length - x
		s.CarVelocity = ahead.snapshot.v
	}
	if o := c.m.oncomingAhead(x); o != nil {
		s.OppositeDistance = o.snapshot.x - x
	}
	if c.target != noTarget {
		if t := c.m.get(c.target); t != nil {
			s.SideDeviation = t.snapshot.x - x
		}
	}
	return s, ahead
}

// update 决策并推进运动学
func (c *Car) update(dt float64) {
	if c.oncoming {
		c.runtime.x -= c.runtime.v * dt
		if !c.m.ctx.Road().Contains(c.runtime.x) {
			c.m.finish(c)
		}
		return
	}

	s, ahead := c.sense()
	d, err := c.controller.Decide(s)
	if err != nil {
		log.Panicf("car %d: %v", c.id, err)
	}
	c.decision = d
	switch {
	case d.From == StateNormal && d.To == StateGoLeftLane:
		c.target = noTarget
		if ahead != nil {
			c.target = ahead.id
		}
	case d.To == StateNormal:
		c.target = noTarget
	}
	c.m.onDecision(c, d)

	road := c.m.ctx.Road()
	// 纵向
	target := d.Speed * c.maxV
	if d.Speed < stopThreshold {
		target = 0
	}
	v := c.snapshot.v
	acc := lo.Clamp((target-v)/dt, -maxDec, maxAcc)
	acc = math.Min(acc, follow(v, c.maxV, s.CarVelocity, s.CarDistance))
	v = math.Max(v+acc*dt, 0)
	// 横向：转向输出偏离0.5的程度决定横向速度，向右为y减小
	lateral := math.Min(maxLateralSpeed, lateralPerSpeed*v)
	vy := (straightSteering - d.Steering) * 2 * lateral
	y := lo.Clamp(c.snapshot.y+vy*dt, -road.LaneWidth()/2, road.LaneCenter(entity.LaneLeft)+road.LaneWidth()/2)
	x := c.snapshot.x + v*dt

	light := c.m.ctx.TrafficLight()
	if !c.passedLight && x > light.Position() {
		c.passedLight = true
		if light.State() == entity.LightRed {
			c.m.onRedLightRun(c)
		}
	}
	c.runtime = carRuntime{x: x, y: y, v: v}
	if !road.Contains(x) {
		c.m.finish(c)
	}
}
