package car

import (
	"testing"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/stretchr/testify/assert"
)

func TestFollow(t *testing.T) {
	// 静止、前方无车：最大加速度
	assert.Equal(t, maxAcc, follow(0, 14, 14, mathutil.INF))
	// 达到期望速度：不再加速
	assert.InDelta(t, 0, follow(14, 14, 14, mathutil.INF), 1e-9)
	// 已碰撞：最大减速度
	assert.Equal(t, -maxDec, follow(10, 14, 0, 0))
	assert.Equal(t, -maxDec, follow(10, 14, 0, -1))
	// 快速接近静止前车
	assert.Equal(t, -maxDec, follow(14, 14, 0, 10))

	// 车距越小加速度越小
	far := follow(10, 14, 10, 60)
	near := follow(10, 14, 10, 20)
	assert.Less(t, near, far)
	assert.Greater(t, far, 0.)
}
