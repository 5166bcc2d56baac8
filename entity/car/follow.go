package car

import (
	"math"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
)

const (
	idmTheta   = 4   // IDM自由流加速指数
	comfortDec = 2.0 // 舒适减速度（米/秒²）
)

// follow 跟车模型
// 功能：智能驾驶模型(IDM)给出的加速度上限，模糊控制器的速度输出不得超过它
// 参数：selfV-本车速度，targetV-期望最大速度，aheadV-前车速度，distance-车距
// 返回：加速度（米/秒²），限制在[-maxDec, maxAcc]
// 算法说明：
// 1. 车距小于等于0时紧急制动
// 2. 期望车距：s_star = minGap + max(0, v*headway + v*(v-v_ahead)/(2*sqrt(a*b)))
// 3. 加速度：a = maxAcc * (1 - (v/targetV)^4 - (s_star/distance)^2)
// 说明：前方无车时distance为无穷大，只剩自由流项
func follow(selfV, targetV, aheadV, distance float64) float64 {
	var acc float64
	if distance <= 0 {
		acc = -mathutil.INF
	} else {
		// https://en.wikipedia.org/wiki/Intelligent_driver_model
		sStar := minGap + math.Max(
			0,
			selfV*timeHeadway+selfV*(selfV-aheadV)/2/math.Sqrt(comfortDec*maxAcc),
		)
		acc = maxAcc * (1 - math.Pow(selfV/targetV, idmTheta) - math.Pow(sStar/distance, 2))
	}
	return lo.Clamp(acc, -maxDec, maxAcc)
}
