// Mamdani模糊推理引擎
// 输入变量、输出变量、模糊集、规则、规则集均存放在引擎内部的扁平数组中，
// 调用方只持有创建时返回的整数句柄
package fuzzy

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// DefaultIntegralSteps 去模糊化时的默认积分步数
const DefaultIntegralSteps = 40

// engineSerial 引擎序号生成器，用于识别句柄来自哪个引擎
var engineSerial atomic.Uint32

// handle 句柄编码：高32位为引擎序号，低32位为数组下标
type handle uint64

func newHandle(serial uint32, index int) handle {
	return handle(uint64(serial)<<32 | uint64(uint32(index)))
}

func (h handle) serial() uint32 {
	return uint32(h >> 32)
}

func (h handle) index() int {
	return int(uint32(h))
}

// InputID 输入变量句柄
type InputID handle

// OutputID 输出变量句柄
type OutputID handle

// InputSetID 输入模糊集句柄
type InputSetID handle

// OutputSetID 输出模糊集句柄
type OutputSetID handle

// RuleID 规则句柄
type RuleID handle

// RuleSetID 规则集句柄
type RuleSetID handle

func (id InputID) String() string     { return fmt.Sprintf("input#%d", handle(id).index()) }
func (id OutputID) String() string    { return fmt.Sprintf("output#%d", handle(id).index()) }
func (id InputSetID) String() string  { return fmt.Sprintf("input_set#%d", handle(id).index()) }
func (id OutputSetID) String() string { return fmt.Sprintf("output_set#%d", handle(id).index()) }
func (id RuleID) String() string      { return fmt.Sprintf("rule#%d", handle(id).index()) }
func (id RuleSetID) String() string   { return fmt.Sprintf("rule_set#%d", handle(id).index()) }

// input 输入变量
type input struct {
	min, max float64
	value    float64 // 当前值（不做截断）
}

// output 输出变量
type output struct {
	min, max float64
	value    float64 // 上一次去模糊化得到的精确值

	touched []int // 本次evaluate中被触发的输出模糊集下标
}

// inputSet 输入模糊集，永久绑定到一个输入变量
type inputSet struct {
	input  int
	f      MembershipFunc
	degree float64 // 最近一次模糊化得到的隶属度

	dirtyEpoch uint64 // 最近一次被加入dirty集合的evaluate轮次
}

// outputSet 输出模糊集，永久绑定到一个输出变量
type outputSet struct {
	output   int
	f        MembershipFunc
	strength float64 // 激活强度

	touchedEpoch uint64 // 最近一次被规则触发的evaluate轮次
}

// rule 规则：antecedents取AND（min），结论为一个输出模糊集
type rule struct {
	antecedents []int
	consequent  int
}

// ruleSet 规则集：一组有序规则，构成一次evaluate的上下文
type ruleSet struct {
	rules []int
}

// Engine 模糊推理引擎
// 功能：持有全部变量、模糊集、规则与规则集，提供逐帧的赋值-推理-读取接口
// 说明：非线程安全。同一个引擎被多个智能体共用时，调用方必须串行化
// SetInput/Evaluate/Output的完整事务，参见Shared
type Engine struct {
	serial uint32
	steps  int

	inputs     []input
	outputs    []output
	inputSets  []inputSet
	outputSets []outputSet
	rules      []rule
	ruleSets   []ruleSet

	epoch uint64 // evaluate轮次，用于dirty集合与触发集合去重
	dirty []int  // 临时缓冲区：本轮需要模糊化的输入模糊集
}

// New 创建使用默认积分步数的引擎
func New() *Engine {
	return NewWithIntegralSteps(DefaultIntegralSteps)
}

// NewWithIntegralSteps 创建引擎
// 参数：steps-去模糊化积分步数，必须为正
func NewWithIntegralSteps(steps int) *Engine {
	if steps <= 0 {
		log.Panicf("fuzzy: integral steps must be positive, got %d", steps)
	}
	return &Engine{
		serial: engineSerial.Add(1),
		steps:  steps,
	}
}

// IntegralSteps 去模糊化积分步数
func (e *Engine) IntegralSteps() int {
	return e.steps
}

// ---------------------------------------------
// 变量注册

// AddInput 添加输入变量，取值范围[min,max]
func (e *Engine) AddInput(min, max float64) InputID {
	if min > max {
		log.Panicf("fuzzy: bad input range [%v, %v]", min, max)
	}
	e.inputs = append(e.inputs, input{min: min, max: max})
	return InputID(newHandle(e.serial, len(e.inputs)-1))
}

// AddOutput 添加输出变量，取值范围[min,max]，初始精确值为0
func (e *Engine) AddOutput(min, max float64) OutputID {
	if min > max {
		log.Panicf("fuzzy: bad output range [%v, %v]", min, max)
	}
	e.outputs = append(e.outputs, output{min: min, max: max})
	return OutputID(newHandle(e.serial, len(e.outputs)-1))
}

// SetInput 写入输入变量的当前值
// 说明：值不做截断，超出定义域的处理由隶属函数负责（在边界处饱和）
func (e *Engine) SetInput(id InputID, value float64) error {
	i, err := e.inputIndex(id)
	if err != nil {
		return err
	}
	e.inputs[i].value = value
	return nil
}

// Output 读取输出变量上一次去模糊化的结果
// 说明：结果可能为NaN或±Inf（没有任何输出模糊集被激活），调用方需自行检查，参见OrDefault
func (e *Engine) Output(id OutputID) (float64, error) {
	i, err := e.outputIndex(id)
	if err != nil {
		return 0, err
	}
	return e.outputs[i].value, nil
}

// OutputRange 输出变量的取值范围
func (e *Engine) OutputRange(id OutputID) (min, max float64, err error) {
	i, err := e.outputIndex(id)
	if err != nil {
		return 0, 0, err
	}
	return e.outputs[i].min, e.outputs[i].max, nil
}

// NumInputs 输入变量数量
func (e *Engine) NumInputs() int {
	return len(e.inputs)
}

// NumOutputs 输出变量数量
func (e *Engine) NumOutputs() int {
	return len(e.outputs)
}

// ---------------------------------------------
// 隶属函数目录

// AddInputSet 在输入变量上添加输入模糊集
func (e *Engine) AddInputSet(id InputID, f MembershipFunc) (InputSetID, error) {
	i, err := e.inputIndex(id)
	if err != nil {
		return 0, err
	}
	if err := checkMembership(f); err != nil {
		return 0, fmt.Errorf("%w for %v: %s", ErrBadMembership, id, err)
	}
	e.inputSets = append(e.inputSets, inputSet{input: i, f: f})
	return InputSetID(newHandle(e.serial, len(e.inputSets)-1)), nil
}

// AddOutputSet 在输出变量上添加输出模糊集
func (e *Engine) AddOutputSet(id OutputID, f MembershipFunc) (OutputSetID, error) {
	i, err := e.outputIndex(id)
	if err != nil {
		return 0, err
	}
	if err := checkMembership(f); err != nil {
		return 0, fmt.Errorf("%w for %v: %s", ErrBadMembership, id, err)
	}
	e.outputSets = append(e.outputSets, outputSet{output: i, f: f})
	return OutputSetID(newHandle(e.serial, len(e.outputSets)-1)), nil
}

// checkMembership 拒绝无法求值的隶属函数：nil接口、nil函数以及没有顶点的折线
func checkMembership(f MembershipFunc) error {
	switch g := f.(type) {
	case nil:
		return errors.New("nil")
	case Func:
		if g == nil {
			return errors.New("nil func")
		}
	case *Polyline:
		if g == nil || len(g.points) == 0 {
			return errors.New("polyline without points")
		}
	}
	return nil
}

// InputSetDegree 输入模糊集最近一次模糊化得到的隶属度
// 说明：不在最近一次evaluate的规则集中的模糊集保持旧值
func (e *Engine) InputSetDegree(id InputSetID) (float64, error) {
	i, err := e.inputSetIndex(id)
	if err != nil {
		return 0, err
	}
	return e.inputSets[i].degree, nil
}

// OutputSetStrength 输出模糊集的激活强度
func (e *Engine) OutputSetStrength(id OutputSetID) (float64, error) {
	i, err := e.outputSetIndex(id)
	if err != nil {
		return 0, err
	}
	return e.outputSets[i].strength, nil
}

// ---------------------------------------------
// 规则

// AddRule 添加规则
// 参数：antecedents-条件输入模糊集（AND），consequent-结论输出模糊集
// 说明：空条件列表是允许的，此时激活强度恒为1
func (e *Engine) AddRule(antecedents []InputSetID, consequent OutputSetID) (RuleID, error) {
	c, err := e.outputSetIndex(consequent)
	if err != nil {
		return 0, err
	}
	r := rule{
		antecedents: make([]int, 0, len(antecedents)),
		consequent:  c,
	}
	for _, id := range antecedents {
		i, err := e.inputSetIndex(id)
		if err != nil {
			return 0, err
		}
		r.antecedents = append(r.antecedents, i)
	}
	e.rules = append(e.rules, r)
	return RuleID(newHandle(e.serial, len(e.rules)-1)), nil
}

// AddRuleSet 添加规则集
// 说明：同一条规则可以出现在多个规则集中；空规则集是允许的
func (e *Engine) AddRuleSet(rules []RuleID) (RuleSetID, error) {
	rs := ruleSet{rules: make([]int, 0, len(rules))}
	for _, id := range rules {
		i, err := e.ruleIndex(id)
		if err != nil {
			return 0, err
		}
		rs.rules = append(rs.rules, i)
	}
	e.ruleSets = append(e.ruleSets, rs)
	return RuleSetID(newHandle(e.serial, len(e.ruleSets)-1)), nil
}

// ---------------------------------------------
// 句柄校验

func (e *Engine) check(kind string, h handle, n int) (int, error) {
	if h.serial() != e.serial || h.index() >= n {
		return 0, fmt.Errorf("%w: %s %d (engine %d)", ErrUnknownHandle, kind, h.index(), h.serial())
	}
	return h.index(), nil
}

func (e *Engine) inputIndex(id InputID) (int, error) {
	return e.check("input", handle(id), len(e.inputs))
}

func (e *Engine) outputIndex(id OutputID) (int, error) {
	return e.check("output", handle(id), len(e.outputs))
}

func (e *Engine) inputSetIndex(id InputSetID) (int, error) {
	return e.check("input set", handle(id), len(e.inputSets))
}

func (e *Engine) outputSetIndex(id OutputSetID) (int, error) {
	return e.check("output set", handle(id), len(e.outputSets))
}

func (e *Engine) ruleIndex(id RuleID) (int, error) {
	return e.check("rule", handle(id), len(e.rules))
}

func (e *Engine) ruleSetIndex(id RuleSetID) (int, error) {
	return e.check("rule set", handle(id), len(e.ruleSets))
}
