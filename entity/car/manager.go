package car

import (
	"math"
	"sort"
	"sync/atomic"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/fuzzysim/entity"
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy/rulebase"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/container"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/randengine"
)

// 生成车辆时与上一辆车的最小车距（米）
const spawnGap = 10.

// Manager 车辆管理器
// 功能：按固定间隔生成本向与对向车辆，维护按位置排序的索引供车辆查找前车，
// 回收驶离道路的车辆
// 说明：更新阶段各车辆并行执行，只读snapshot与索引，只写自己的runtime
type Manager struct {
	ctx entity.ITaskContext

	doc           *rulebase.Document // 规则库文档，每辆车据此构建独占引擎
	integralSteps int
	sensorNoise   float64

	rng    *randengine.Engine
	cars   *container.IncrementalArray[*Car]
	data   map[int32]*Car
	nextID int32

	// 准备阶段构建的索引
	forward  []*Car // 本向车辆，按x升序
	oncoming []*Car // 对向车辆，按x升序

	spawned      int32   // 已生成的本向车辆数
	spawnTimer   float64 // 距下一辆本向车辆生成的时间
	oncomingTime float64 // 距下一辆对向车辆生成的时间

	stats struct {
		spawned, finished, overtakes, redLightRuns atomic.Int32
		evaluations, nonFinite                     atomic.Int64
	}
}

// NewManager 创建车辆管理器
// 参数：ctx-任务上下文，doc-规则库文档
func NewManager(ctx entity.ITaskContext, doc *rulebase.Document) *Manager {
	c := ctx.RuntimeConfig()
	return &Manager{
		ctx:           ctx,
		doc:           doc,
		integralSteps: c.All.Fuzzy.IntegralSteps,
		sensorNoise:   c.All.Cars.SensorNoise,
		rng:           randengine.New(c.C.Seed),
		cars:          container.NewIncrementalArray[*Car](),
		data:          make(map[int32]*Car),
	}
}

// Init 初始化，校验规则库能够构建控制器
// 说明：清空车辆、统计量并重置随机数引擎，重复调用后的运行结果与首次相同
func (m *Manager) Init() {
	if _, err := NewController(m.doc, m.integralSteps); err != nil {
		log.Panicf("bad rule base: %v", err)
	}
	c := m.ctx.RuntimeConfig()
	m.rng = randengine.New(c.C.Seed)
	m.cars = container.NewIncrementalArray[*Car]()
	m.data = make(map[int32]*Car)
	m.forward, m.oncoming = nil, nil
	m.nextID = 0
	m.spawned = 0
	m.spawnTimer = 0
	m.oncomingTime = c.All.Cars.OncomingInterval

	m.stats.spawned.Store(0)
	m.stats.finished.Store(0)
	m.stats.overtakes.Store(0)
	m.stats.redLightRuns.Store(0)
	m.stats.evaluations.Store(0)
	m.stats.nonFinite.Store(0)
}

// Cars 已生效的全部车辆
func (m *Manager) Cars() []entity.ICar {
	return lo.Map(m.cars.Data(), func(c *Car, _ int) entity.ICar { return c })
}

// Data 已生效的全部车辆
func (m *Manager) Data() []*Car {
	return m.cars.Data()
}

// Stats 累计统计
func (m *Manager) Stats() entity.CarStats {
	return entity.CarStats{
		Spawned:      m.stats.spawned.Load(),
		Finished:     m.stats.finished.Load(),
		Evaluations:  m.stats.evaluations.Load(),
		NonFinite:    m.stats.nonFinite.Load(),
		Overtakes:    m.stats.overtakes.Load(),
		RedLightRuns: m.stats.redLightRuns.Load(),
	}
}

// Prepare 准备阶段
// 算法说明：
// 1. 生效上一步的车辆增删
// 2. 写入每辆车的snapshot
// 3. 按x排序构建本向与对向索引
func (m *Manager) Prepare() {
	added, removed := m.cars.Prepare()
	if added > 0 || removed > 0 {
		log.Debugf("cars: +%d -%d, total %d", added, removed, m.cars.Len())
	}
	data := m.cars.Data()
	parallel.GoFor(data, func(c *Car) { c.prepare() })

	m.data = lo.SliceToMap(data, func(c *Car) (int32, *Car) { return c.id, c })
	m.forward = m.forward[:0]
	m.oncoming = m.oncoming[:0]
	for _, c := range data {
		if c.oncoming {
			m.oncoming = append(m.oncoming, c)
		} else {
			m.forward = append(m.forward, c)
		}
	}
	byX := func(s []*Car) func(i, j int) bool {
		return func(i, j int) bool { return s[i].snapshot.x < s[j].snapshot.x }
	}
	sort.Slice(m.forward, byX(m.forward))
	sort.Slice(m.oncoming, byX(m.oncoming))
}

// Update 更新阶段
func (m *Manager) Update(dt float64) {
	parallel.GoFor(m.cars.Data(), func(c *Car) { c.update(dt) })
	m.spawn(dt)
}

// spawn 按间隔生成车辆，入口被占用时推迟生成
func (m *Manager) spawn(dt float64) {
	cc := m.ctx.RuntimeConfig().All.Cars
	road := m.ctx.Road()

	m.spawnTimer -= dt
	if m.spawned < cc.Count && m.spawnTimer <= 0 && m.entryFree() {
		slow := m.rng.PTrue(cc.SlowRatio)
		maxV := cc.SlowSpeed
		if !slow {
			maxV = m.rng.NormClamped(cc.MaxSpeedMean, cc.MaxSpeedStd, cc.SlowSpeed, math.Max(cc.SlowSpeed, road.MaxSpeed()))
		}
		ctrl, err := NewController(m.doc, m.integralSteps)
		if err != nil {
			log.Panicf("failed to create controller: %v", err)
		}
		c := &Car{
			m:          m,
			id:         m.nextID,
			length:     cc.Length,
			maxV:       maxV,
			controller: ctrl,
			rng:        m.rng.Child(),
			target:     noTarget,
			runtime:    carRuntime{x: 0, y: road.LaneCenter(entity.LaneRight), v: maxV / 2},
		}
		m.add(c)
		m.spawned++
		m.spawnTimer = cc.SpawnInterval
		log.Debugf("spawn car %d (max speed %.1f, slow=%v)", c.id, maxV, slow)
	}

	if cc.OncomingInterval <= 0 {
		return
	}
	m.oncomingTime -= dt
	if m.oncomingTime <= 0 {
		c := &Car{
			m:        m,
			id:       m.nextID,
			length:   cc.Length,
			maxV:     cc.OncomingSpeed,
			oncoming: true,
			target:   noTarget,
			runtime:  carRuntime{x: road.Length(), y: road.LaneCenter(entity.LaneLeft), v: cc.OncomingSpeed},
		}
		m.add(c)
		m.oncomingTime += cc.OncomingInterval
	}
}

func (m *Manager) add(c *Car) {
	m.nextID++
	m.cars.Add(c)
	m.stats.spawned.Add(1)
}

// entryFree 道路入口处右侧车道是否有足够空间
func (m *Manager) entryFree() bool {
	road := m.ctx.Road()
	for _, c := range m.forward {
		if road.LaneOf(c.runtime.y) != entity.LaneRight {
			continue
		}
		if c.runtime.x-c.length < spawnGap {
			return false
		}
	}
	return true
}

// finish 车辆驶离道路，可在更新阶段并发调用
func (m *Manager) finish(c *Car) {
	m.cars.Remove(c)
	m.stats.finished.Add(1)
}

// onDecision 统计决策结果，可在更新阶段并发调用
func (m *Manager) onDecision(c *Car, d Decision) {
	m.stats.evaluations.Add(1)
	if d.NonFinite {
		m.stats.nonFinite.Add(1)
	}
	if d.From != d.To {
		log.Debugf("car %d: %v -> %v", c.id, d.From, d.To)
		if d.To == StateGoLeftLane {
			m.stats.overtakes.Add(1)
		}
	}
}

func (m *Manager) onRedLightRun(c *Car) {
	log.Debugf("car %d passed the stop line on red", c.id)
	m.stats.redLightRuns.Add(1)
}

// get 按ID查找车辆，不存在时返回nil
func (m *Manager) get(id int32) *Car {
	return m.data[id]
}

// ahead 同车道上位于x前方的最近本向车辆
func (m *Manager) ahead(c *Car, lane entity.LaneSide) *Car {
	road := m.ctx.Road()
	x := c.snapshot.x
	i := sort.Search(len(m.forward), func(i int) bool { return m.forward[i].snapshot.x > x })
	for ; i < len(m.forward); i++ {
		o := m.forward[i]
		if o != c && road.LaneOf(o.snapshot.y) == lane {
			return o
		}
	}
	return nil
}

// oncomingAhead 位于x前方的最近对向车辆
func (m *Manager) oncomingAhead(x float64) *Car {
	i := sort.Search(len(m.oncoming), func(i int) bool { return m.oncoming[i].snapshot.x > x })
	if i < len(m.oncoming) {
		return m.oncoming[i]
	}
	return nil
}
