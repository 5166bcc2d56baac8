package car

import (
	_ "embed"
	"fmt"

	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy"
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy/rulebase"
)

//go:embed rulebase.yml
var defaultRuleBase []byte

// 控制器输入
const (
	inDeviation = iota
	inLeftDeviation
	inRoadDeviation
	inDistance
	inLightStatus
	inCarDistance
	inCarVelocity
	inOppositeDistance
	inSideDeviation
	numInputs
)

// 控制器输出
const (
	outSteering = iota
	outSpeed
	outGoLeftLane
	outStayLeftLane
	outBackToRightLane
	outGoNormal
	numOutputs
)

var inputNames = [numInputs]string{
	"deviation",
	"left_deviation",
	"road_deviation",
	"distance",
	"light_status",
	"car_distance",
	"car_velocity",
	"car_opposite_distance",
	"side_deviation",
}

var outputNames = [numOutputs]string{
	"steering",
	"speed",
	"go_left_lane",
	"stay_left_lane",
	"back_to_right_lane",
	"go_normal",
}

// LoadRuleBase 读取规则库文档，path为空时使用内置规则库
func LoadRuleBase(path string) (*rulebase.Document, error) {
	if path == "" {
		return rulebase.Parse(defaultRuleBase)
	}
	return rulebase.LoadFile(path)
}

// program 由规则库构建出的引擎及控制器使用的全部句柄
type program struct {
	engine   *fuzzy.Engine
	inputs   [numInputs]fuzzy.InputID
	outputs  [numOutputs]fuzzy.OutputID
	ruleSets [numStates]fuzzy.RuleSetID
}

// compile 构建引擎并按名字解析句柄
// 参数：doc-规则库文档，integralSteps-大于0时覆盖文档中的积分步数
// 返回：规则库缺少控制器需要的变量或规则集，或输出变量的取值范围不是[0, 1]时返回错误
func compile(doc *rulebase.Document, integralSteps int) (*program, error) {
	if integralSteps > 0 {
		d := *doc
		d.IntegralSteps = integralSteps
		doc = &d
	}
	b, err := rulebase.Build(doc)
	if err != nil {
		return nil, err
	}
	p := &program{engine: b.Engine()}
	for i, name := range inputNames {
		id, ok := b.Input(name)
		if !ok {
			return nil, fmt.Errorf("car: rule base has no input %q", name)
		}
		p.inputs[i] = id
	}
	for i, name := range outputNames {
		id, ok := b.Output(name)
		if !ok {
			return nil, fmt.Errorf("car: rule base has no output %q", name)
		}
		// 速度按比例缩放，转向以0.5为直行，布尔输出以0.5为阈值
		low, high, err := p.engine.OutputRange(id)
		if err != nil {
			return nil, err
		}
		if low != 0 || high != 1 {
			return nil, fmt.Errorf("car: output %q must range over [0, 1], got [%g, %g]", name, low, high)
		}
		p.outputs[i] = id
	}
	for s := State(0); s < numStates; s++ {
		id, ok := b.RuleSet(s.String())
		if !ok {
			return nil, fmt.Errorf("car: rule base has no rule set %q", s.String())
		}
		p.ruleSets[s] = id
	}
	return p, nil
}

// run 写入输入、执行当前状态的规则集并读回全部输出
func (p *program) run(state State, in [numInputs]float64) (out [numOutputs]float64, err error) {
	for i, id := range p.inputs {
		if err = p.engine.SetInput(id, in[i]); err != nil {
			return
		}
	}
	if err = p.engine.Evaluate(p.ruleSets[state]); err != nil {
		return
	}
	for i, id := range p.outputs {
		if out[i], err = p.engine.Output(id); err != nil {
			return
		}
	}
	return
}
