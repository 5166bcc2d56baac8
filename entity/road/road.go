package road

import (
	"github.com/tsinghua-fib-lab/fuzzysim/entity"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

// Road 直线双车道道路
// 功能：右侧车道（y=0）为本向车道，左侧车道（y=laneWidth）为对向车道
type Road struct {
	length    float64 // 道路长度（米）
	laneWidth float64 // 车道宽度（米）
	maxSpeed  float64 // 限速（米/秒）
}

// New 根据配置创建道路
func New(c config.Road) *Road {
	if c.Length <= 0 || c.LaneWidth <= 0 {
		log.Panicf("bad road size: length=%v lane_width=%v", c.Length, c.LaneWidth)
	}
	return &Road{length: c.Length, laneWidth: c.LaneWidth, maxSpeed: c.MaxSpeed}
}

func (r *Road) Length() float64 {
	return r.length
}

func (r *Road) LaneWidth() float64 {
	return r.laneWidth
}

func (r *Road) MaxSpeed() float64 {
	return r.maxSpeed
}

// LaneCenter 车道中心线的y坐标
func (r *Road) LaneCenter(side entity.LaneSide) float64 {
	if side == entity.LaneLeft {
		return r.laneWidth
	}
	return 0
}

// LaneOf 横向位置所在车道，以两车道分界线y=laneWidth/2划分
func (r *Road) LaneOf(y float64) entity.LaneSide {
	if y >= r.laneWidth/2 {
		return entity.LaneLeft
	}
	return entity.LaneRight
}

// Deviation 车辆相对车道的偏离程度
// 功能：(车道左边线y - y) / 车道宽度
// 说明：位于中心线时为0.5，位于左边线为0，位于右边线为1，车道外的位置超出[0,1]
func (r *Road) Deviation(side entity.LaneSide, y float64) float64 {
	leftEdge := r.LaneCenter(side) + r.laneWidth/2
	return (leftEdge - y) / r.laneWidth
}

// Contains 纵向位置是否在道路上
func (r *Road) Contains(x float64) bool {
	return x >= 0 && x <= r.length
}
