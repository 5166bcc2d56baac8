package fuzzy

import "math"

// Evaluate 使用指定规则集执行一次推理
// 功能：模糊化-规则激活-聚合-去模糊化，结果写入被触发的输出变量
// 参数：id-规则集句柄
// 算法说明：
// 1. 收集规则集引用的输入模糊集（去重），每个隶属函数本轮最多计算一次
// 2. 仅对这些输入模糊集计算隶属度，其余输入模糊集保留旧值
// 3. 清空所有输出变量的触发记录
// 4. 按顺序处理规则：激活强度=条件隶属度的min，与本轮同一输出模糊集已有强度取max
// 5. 对每个被触发的输出变量按重心法去模糊化
// 说明：本轮未被触发的输出变量保留上一次的精确值，调用方的状态机依赖该行为，不能改为清零
func (e *Engine) Evaluate(id RuleSetID) error {
	rsIndex, err := e.ruleSetIndex(id)
	if err != nil {
		return err
	}
	rs := &e.ruleSets[rsIndex]
	e.epoch++

	// 模糊化
	e.collectDirtyInputSets(rs)
	for _, i := range e.dirty {
		is := &e.inputSets[i]
		is.degree = is.f.Degree(e.inputs[is.input].value)
	}

	for i := range e.outputs {
		e.outputs[i].touched = e.outputs[i].touched[:0]
	}

	// 规则激活与聚合
	for _, r := range rs.rules {
		rl := &e.rules[r]
		firing := e.firingStrength(rl)
		os := &e.outputSets[rl.consequent]
		if os.touchedEpoch != e.epoch {
			os.touchedEpoch = e.epoch
			os.strength = 0
			out := &e.outputs[os.output]
			out.touched = append(out.touched, rl.consequent)
		}
		os.strength = math.Max(os.strength, firing)
	}

	// 去模糊化
	for i := range e.outputs {
		out := &e.outputs[i]
		if len(out.touched) == 0 {
			continue
		}
		out.value = e.defuzzify(out)
	}
	return nil
}

// collectDirtyInputSets 收集规则集引用的输入模糊集，按首次出现的顺序去重
func (e *Engine) collectDirtyInputSets(rs *ruleSet) {
	e.dirty = e.dirty[:0]
	for _, r := range rs.rules {
		for _, i := range e.rules[r].antecedents {
			if is := &e.inputSets[i]; is.dirtyEpoch != e.epoch {
				is.dirtyEpoch = e.epoch
				e.dirty = append(e.dirty, i)
			}
		}
	}
}

// firingStrength 规则激活强度（模糊AND）
func (e *Engine) firingStrength(r *rule) float64 {
	result := 1.0
	for _, i := range r.antecedents {
		result = math.Min(result, e.inputSets[i].degree)
	}
	return result
}

// envelope 输出变量在x处的聚合隶属度
// 公式：max_S min(S.strength, S.f(x))，S为本轮被触发的输出模糊集
func (e *Engine) envelope(out *output, x float64) float64 {
	result := 0.0
	for _, i := range out.touched {
		os := &e.outputSets[i]
		result = math.Max(result, math.Min(os.strength, os.f.Degree(x)))
	}
	return result
}

// defuzzify 重心法去模糊化
// 算法说明：将[min,max]等分为steps段，相邻采样点之间对包络做线性插值，
// 分子为∫x·y(x)dx的解析积分，分母为梯形面积
func (e *Engine) defuzzify(out *output) float64 {
	var nominator, denominator float64
	width := out.max - out.min
	x1 := out.min
	y1 := e.envelope(out, x1)
	for i := 0; i < e.steps; i++ {
		x2 := float64(i+1)*width/float64(e.steps) + out.min
		y2 := e.envelope(out, x2)
		nominator += momentIntegral(x1, x2, y1, y2)
		denominator += areaIntegral(x1, x2, y1, y2)
		x1, y1 = x2, y2
	}
	return nominator / denominator
}

// Envelope 输出变量当前聚合包络在x处的值
// 说明：仅反映最近一次evaluate触发的输出模糊集；未被触发的输出变量恒为0
func (e *Engine) Envelope(id OutputID, x float64) (float64, error) {
	i, err := e.outputIndex(id)
	if err != nil {
		return 0, err
	}
	return e.envelope(&e.outputs[i], x), nil
}
