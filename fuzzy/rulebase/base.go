package rulebase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy"
)

// Base 由规则库文档构建出的引擎及名字到句柄的索引
type Base struct {
	engine *fuzzy.Engine

	inputs     map[string]fuzzy.InputID
	outputs    map[string]fuzzy.OutputID
	inputSets  map[string]fuzzy.InputSetID  // key: 变量名.模糊集名
	outputSets map[string]fuzzy.OutputSetID // key: 变量名.模糊集名
	rules      map[string]fuzzy.RuleID
	ruleSets   map[string]fuzzy.RuleSetID
}

// Build 校验文档并构建引擎
// 功能：按文档顺序依次创建变量、模糊集、规则与规则集
// 返回：名字重复、形状非法、引用不存在时返回错误
func Build(doc *Document) (*Base, error) {
	if err := checkNames(doc); err != nil {
		return nil, err
	}
	steps := doc.IntegralSteps
	if steps == 0 {
		steps = fuzzy.DefaultIntegralSteps
	} else if steps < 0 {
		return nil, fmt.Errorf("rulebase: bad integral_steps %d", steps)
	}
	b := &Base{
		engine:     fuzzy.NewWithIntegralSteps(steps),
		inputs:     make(map[string]fuzzy.InputID),
		outputs:    make(map[string]fuzzy.OutputID),
		inputSets:  make(map[string]fuzzy.InputSetID),
		outputSets: make(map[string]fuzzy.OutputSetID),
		rules:      make(map[string]fuzzy.RuleID),
		ruleSets:   make(map[string]fuzzy.RuleSetID),
	}
	e := b.engine

	for _, v := range doc.Inputs {
		if v.Min > v.Max {
			return nil, fmt.Errorf("rulebase: input %s has bad range [%v, %v]", v.Name, v.Min, v.Max)
		}
		id := e.AddInput(v.Min, v.Max)
		b.inputs[v.Name] = id
		for _, s := range v.Sets {
			f, err := NewShape(s.Shape, s.Points)
			if err != nil {
				return nil, fmt.Errorf("rulebase: input set %s.%s: %w", v.Name, s.Name, err)
			}
			sid, err := e.AddInputSet(id, f)
			if err != nil {
				return nil, err
			}
			b.inputSets[v.Name+"."+s.Name] = sid
		}
	}
	for _, v := range doc.Outputs {
		if v.Min > v.Max {
			return nil, fmt.Errorf("rulebase: output %s has bad range [%v, %v]", v.Name, v.Min, v.Max)
		}
		id := e.AddOutput(v.Min, v.Max)
		b.outputs[v.Name] = id
		for _, s := range v.Sets {
			f, err := NewShape(s.Shape, s.Points)
			if err != nil {
				return nil, fmt.Errorf("rulebase: output set %s.%s: %w", v.Name, s.Name, err)
			}
			sid, err := e.AddOutputSet(id, f)
			if err != nil {
				return nil, err
			}
			b.outputSets[v.Name+"."+s.Name] = sid
		}
	}

	for _, r := range doc.Rules {
		antecedents := make([]fuzzy.InputSetID, 0, len(r.If))
		for _, ref := range r.If {
			sid, ok := b.inputSets[ref]
			if !ok {
				return nil, fmt.Errorf("rulebase: rule %s: unknown input set %q", r.Name, ref)
			}
			antecedents = append(antecedents, sid)
		}
		consequent, ok := b.outputSets[r.Then]
		if !ok {
			return nil, fmt.Errorf("rulebase: rule %s: unknown output set %q", r.Name, r.Then)
		}
		id, err := e.AddRule(antecedents, consequent)
		if err != nil {
			return nil, err
		}
		b.rules[r.Name] = id
	}

	included := make(map[string][]fuzzy.RuleID, len(doc.RuleSets))
	for _, rs := range doc.RuleSets {
		rules := make([]fuzzy.RuleID, 0, len(rs.Rules))
		for _, name := range rs.Include {
			inc, ok := included[name]
			if !ok {
				return nil, fmt.Errorf("rulebase: rule set %s: unknown or later included rule set %q", rs.Name, name)
			}
			rules = append(rules, inc...)
		}
		for _, name := range rs.Rules {
			id, ok := b.rules[name]
			if !ok {
				return nil, fmt.Errorf("rulebase: rule set %s: unknown rule %q", rs.Name, name)
			}
			rules = append(rules, id)
		}
		id, err := e.AddRuleSet(rules)
		if err != nil {
			return nil, err
		}
		b.ruleSets[rs.Name] = id
		included[rs.Name] = rules
	}
	log.Debugf("built rule base: %d inputs, %d outputs, %d rules, %d rule sets",
		len(b.inputs), len(b.outputs), len(b.rules), len(b.ruleSets))
	return b, nil
}

// checkNames 检查名字非空且不重复
func checkNames(doc *Document) error {
	variables := append(append([]Variable{}, doc.Inputs...), doc.Outputs...)
	groups := map[string][]string{
		"variable": lo.Map(variables, func(v Variable, _ int) string { return v.Name }),
		"rule":     lo.Map(doc.Rules, func(r Rule, _ int) string { return r.Name }),
		"rule set": lo.Map(doc.RuleSets, func(rs RuleSet, _ int) string { return rs.Name }),
	}
	for _, v := range variables {
		groups["set of "+v.Name] = lo.Map(v.Sets, func(s Set, _ int) string { return s.Name })
	}
	kinds := lo.Keys(groups)
	sort.Strings(kinds)
	for _, kind := range kinds {
		names := groups[kind]
		for _, name := range names {
			if name == "" || strings.Contains(name, ".") {
				return fmt.Errorf("rulebase: bad %s name %q", kind, name)
			}
		}
		if dup := lo.FindDuplicates(names); len(dup) > 0 {
			return fmt.Errorf("rulebase: duplicated %s names %v", kind, dup)
		}
	}
	return nil
}

// Engine 构建出的引擎
func (b *Base) Engine() *fuzzy.Engine {
	return b.engine
}

// Input 按名字查找输入变量
func (b *Base) Input(name string) (fuzzy.InputID, bool) {
	id, ok := b.inputs[name]
	return id, ok
}

// Output 按名字查找输出变量
func (b *Base) Output(name string) (fuzzy.OutputID, bool) {
	id, ok := b.outputs[name]
	return id, ok
}

// InputSet 按"变量名.模糊集名"查找输入模糊集
func (b *Base) InputSet(name string) (fuzzy.InputSetID, bool) {
	id, ok := b.inputSets[name]
	return id, ok
}

// OutputSet 按"变量名.模糊集名"查找输出模糊集
func (b *Base) OutputSet(name string) (fuzzy.OutputSetID, bool) {
	id, ok := b.outputSets[name]
	return id, ok
}

// Rule 按名字查找规则
func (b *Base) Rule(name string) (fuzzy.RuleID, bool) {
	id, ok := b.rules[name]
	return id, ok
}

// RuleSet 按名字查找规则集
func (b *Base) RuleSet(name string) (fuzzy.RuleSetID, bool) {
	id, ok := b.ruleSets[name]
	return id, ok
}

// RuleSetNames 全部规则集名（升序）
func (b *Base) RuleSetNames() []string {
	names := lo.Keys(b.ruleSets)
	sort.Strings(names)
	return names
}

// SetInputs 按名字批量写入输入值
func (b *Base) SetInputs(values map[string]float64) error {
	for name, v := range values {
		id, ok := b.inputs[name]
		if !ok {
			return fmt.Errorf("rulebase: unknown input %q", name)
		}
		if err := b.engine.SetInput(id, v); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate 按名字执行规则集
func (b *Base) Evaluate(ruleSet string) error {
	id, ok := b.ruleSets[ruleSet]
	if !ok {
		return fmt.Errorf("rulebase: unknown rule set %q", ruleSet)
	}
	return b.engine.Evaluate(id)
}

// Outputs 读取全部输出变量的当前精确值
func (b *Base) Outputs() map[string]float64 {
	res := make(map[string]float64, len(b.outputs))
	for name, id := range b.outputs {
		// 句柄由本引擎签发，不会出错
		v, _ := b.engine.Output(id)
		res[name] = v
	}
	return res
}
