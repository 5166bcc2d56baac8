package fuzzy

import (
	"errors"
	"math"
)

// ErrUnknownHandle 句柄不属于本引擎或下标越界
var ErrUnknownHandle = errors.New("fuzzy: unknown handle")

// ErrBadMembership 隶属函数为nil或无法求值
var ErrBadMembership = errors.New("fuzzy: bad membership function")

// IsFinite 判断去模糊化结果是否为有限值
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrDefault 去模糊化结果为NaN或±Inf时返回fallback
// 说明：引擎不处理除零，没有激活任何输出模糊集的输出变量由调用方给出默认值
func OrDefault(v, fallback float64) float64 {
	if IsFinite(v) {
		return v
	}
	return fallback
}
