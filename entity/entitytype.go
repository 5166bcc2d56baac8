package entity

// 实体依赖倒置

// LaneSide 车道
type LaneSide int32

const (
	LaneRight LaneSide = iota // 本向行驶车道
	LaneLeft                  // 对向车道，超车时借用
)

func (s LaneSide) String() string {
	switch s {
	case LaneRight:
		return "right"
	case LaneLeft:
		return "left"
	default:
		return "unknown"
	}
}

// entity/road的依赖倒置
// 坐标系：x沿道路方向，y向左为正，右侧车道中心线y=0
type IRoad interface {
	Length() float64
	LaneWidth() float64
	MaxSpeed() float64
	// 纵向位置是否在[0, Length]内
	Contains(x float64) bool

	// 车道中心线的y坐标
	LaneCenter(side LaneSide) float64
	// 横向位置所在车道
	LaneOf(y float64) LaneSide
	// 偏离程度：(车道左边线y - y) / 车道宽度，位于中心线时为0.5，越靠左越小
	Deviation(side LaneSide, y float64) float64
}

// LightState 信号灯灯色
type LightState int32

const (
	LightGreen LightState = iota
	LightYellow
	LightRed
	LightRedYellow
)

func (s LightState) String() string {
	switch s {
	case LightGreen:
		return "green"
	case LightYellow:
		return "yellow"
	case LightRed:
		return "red"
	case LightRedYellow:
		return "red_yellow"
	default:
		return "unknown"
	}
}

// entity/trafficlight的依赖倒置
type ITrafficLight interface {
	Position() float64 // 停止线位置（米）
	State() LightState // 当前灯色
	Status() float64   // 灯态在[0,8)上的编码，供模糊控制器使用
}

// entity/car的依赖倒置
type ICar interface {
	ID() int32
	X() float64      // 纵向位置（米）
	Y() float64      // 横向位置（米）
	V() float64      // 速度（米/秒），对向车辆沿x负方向行驶
	Length() float64 // 车长（米）
	Oncoming() bool  // 是否为对向车辆
}
