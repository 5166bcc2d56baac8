package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
)

// Clock 仿真时钟
// 功能：维护当前步数与仿真时间，模拟区间为[START_STEP, END_STEP)
type Clock struct {
	DT         float64 // 每步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步

	T    float64 // 当前时间（秒）
	Step int32   // 当前步数
}

// New 根据配置创建时钟
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置到起始步
func (c *Clock) Init() {
	c.Step = c.START_STEP
	c.T = float64(c.Step) * c.DT
}

// Next 推进一步
// 返回：推进后是否仍在模拟区间内
func (c *Clock) Next() bool {
	c.Step++
	c.T = float64(c.Step) * c.DT
	return c.Step < c.END_STEP
}

// String 格式化为 HH:MM:SS
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, int(s))
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒（秒支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
