package car

import (
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy"
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy/rulebase"
)

const (
	booleanThreshold = 0.5 // 布尔输出大于该值视为真
	straightSteering = 0.5 // 转向输出无效时的替代值
	stopSpeed        = 0.  // 速度输出无效时的替代值
)

// Sensors 控制器的一次观测
type Sensors struct {
	Deviation        float64 // 相对当前所在车道的偏离程度
	LeftDeviation    float64 // 相对左侧车道的偏离程度
	RoadDeviation    float64 // 相对右侧车道的偏离程度
	Distance         float64 // 到停止线的距离（米），已越过为无穷大
	LightStatus      float64 // 灯态编码
	CarDistance      float64 // 同车道前车车尾距离（米），无前车为无穷大
	CarVelocity      float64 // 前车速度（米/秒）
	OppositeDistance float64 // 前方最近对向车辆的距离（米），无对向车为无穷大
	SideDeviation    float64 // 被超车辆相对本车的纵向位置（米）
}

func (s Sensors) values() [numInputs]float64 {
	return [numInputs]float64{
		inDeviation:        s.Deviation,
		inLeftDeviation:    s.LeftDeviation,
		inRoadDeviation:    s.RoadDeviation,
		inDistance:         s.Distance,
		inLightStatus:      s.LightStatus,
		inCarDistance:      s.CarDistance,
		inCarVelocity:      s.CarVelocity,
		inOppositeDistance: s.OppositeDistance,
		inSideDeviation:    s.SideDeviation,
	}
}

// Decision 控制器的一次决策
type Decision struct {
	From, To  State
	Steering  float64 // [0,1]，0.5为直行，大于0.5向右
	Speed     float64 // 期望速度占最大速度的比例
	NonFinite bool    // 推理结果出现NaN/Inf并被替换
}

// Controller 车辆模糊控制器
// 功能：持有独占的推理引擎与车道变换状态机，每个仿真步执行当前状态对应的规则集
// 说明：本状态规则集未涉及的布尔输出保持旧值，因此只读取当前状态关心的输出
type Controller struct {
	prog  *program
	state State
}

// NewController 由规则库文档创建控制器
// 参数：doc-规则库文档，integralSteps-大于0时覆盖文档中的积分步数
func NewController(doc *rulebase.Document, integralSteps int) (*Controller, error) {
	p, err := compile(doc, integralSteps)
	if err != nil {
		return nil, err
	}
	return &Controller{prog: p, state: StateNormal}, nil
}

func (c *Controller) State() State {
	return c.state
}

// Engine 控制器独占的推理引擎
func (c *Controller) Engine() *fuzzy.Engine {
	return c.prog.engine
}

// Decide 根据观测执行一次推理并推进状态机
func (c *Controller) Decide(s Sensors) (Decision, error) {
	out, err := c.prog.run(c.state, s.values())
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		From:     c.state,
		Steering: fuzzy.OrDefault(out[outSteering], straightSteering),
		Speed:    fuzzy.OrDefault(out[outSpeed], stopSpeed),
	}
	d.NonFinite = !fuzzy.IsFinite(out[outSteering]) || !fuzzy.IsFinite(out[outSpeed])
	d.To = next(c.state, out)
	c.state = d.To
	return d, nil
}

// next 状态转移，NaN与任何阈值比较均为假，因此无效输出不会触发转移
func next(state State, out [numOutputs]float64) State {
	switch state {
	case StateNormal:
		if out[outGoLeftLane] > booleanThreshold {
			return StateGoLeftLane
		}
	case StateGoLeftLane:
		if out[outBackToRightLane] > booleanThreshold {
			return StateBackToRightLane
		}
		if out[outStayLeftLane] > booleanThreshold {
			return StateStayLeftLane
		}
	case StateStayLeftLane:
		if out[outBackToRightLane] > booleanThreshold {
			return StateBackToRightLane
		}
	case StateBackToRightLane:
		if out[outGoNormal] > booleanThreshold {
			return StateNormal
		}
	}
	return state
}
