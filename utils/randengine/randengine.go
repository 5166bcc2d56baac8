// 随机数引擎，包装了golang.org/x/exp/rand，提供车辆生成与传感器噪声所需的随机数方法
package randengine

import (
	"flag"
	"log"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎（非线程安全）
// 说明：并发使用时每个协程应持有由Child派生的独立引擎
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 参数：seed-随机数种子
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Child 派生一个独立的随机数引擎
// 功能：以当前引擎产生的随机数作为种子，保证派生序列可复现
func (e *Engine) Child() *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(e.Uint64()))}
}

// PTrue 以指定概率返回true
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// NormClamped 截断正态分布
// 功能：生成均值mean、标准差std的正态随机数，并截断到[min, max]
func (e *Engine) NormClamped(mean, std, min, max float64) float64 {
	if min > max {
		log.Panicf("randengine: NormClamped: min %f > max %f", min, max)
	}
	return lo.Clamp(mean+std*e.NormFloat64(), min, max)
}

// Jitter 为观测值叠加零均值高斯噪声，std<=0时原样返回
func (e *Engine) Jitter(v, std float64) float64 {
	if std <= 0 {
		return v
	}
	return v + std*e.NormFloat64()
}
