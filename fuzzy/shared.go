package fuzzy

import "sync"

// Shared 被多个智能体共用的引擎
// 功能：以互斥锁串行化"写输入-推理-读输出"的完整事务
// 说明：引擎的输入、输出与模糊集状态都是原地修改的，不区分智能体，
// 因此一个智能体的读回必须在下一个智能体写输入之前完成
type Shared struct {
	engine *Engine
	mtx    sync.Mutex
}

// NewShared 包装一个已构建完成的引擎
func NewShared(engine *Engine) *Shared {
	return &Shared{engine: engine}
}

// Do 在锁内执行一次完整事务
func (s *Shared) Do(fn func(e *Engine) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return fn(s.engine)
}

// EvaluateWith 写入输入、执行推理并读回输出（线程安全）
// 参数：inputs-输入句柄到值的映射，ruleSet-规则集，outputs-需要读回的输出句柄
// 返回：与outputs一一对应的精确值
func (s *Shared) EvaluateWith(inputs map[InputID]float64, ruleSet RuleSetID, outputs ...OutputID) ([]float64, error) {
	results := make([]float64, len(outputs))
	err := s.Do(func(e *Engine) error {
		for id, v := range inputs {
			if err := e.SetInput(id, v); err != nil {
				return err
			}
		}
		if err := e.Evaluate(ruleSet); err != nil {
			return err
		}
		for i, id := range outputs {
			v, err := e.Output(id)
			if err != nil {
				return err
			}
			results[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
