// 仿真结果输出：逐步记录每辆车的位置、速度与控制器状态
package output

import (
	"context"
	"sync"
)

// Record 单辆车在单个仿真步的记录
type Record struct {
	Step      int32   `bson:"step"`
	T         float64 `bson:"t"`
	ID        int32   `bson:"id"`
	X         float64 `bson:"x"`
	Y         float64 `bson:"y"`
	V         float64 `bson:"v"`
	Oncoming  bool    `bson:"oncoming,omitempty"`
	State     string  `bson:"state"`     // 控制器状态
	Steering  float64 `bson:"steering"`  // 转向输出，0.5为直行
	Speed     float64 `bson:"speed"`     // 速度输出，0表示停车
	Light     string  `bson:"light"`     // 当前灯色
	Phase     int32   `bson:"phase"`     // 当前相位下标
	Remaining float64 `bson:"remaining"` // 当前相位剩余时间，信号灯停用时为+Inf
}

// Recorder 输出接口
type Recorder interface {
	Record(ctx context.Context, records []Record) error
	Close(ctx context.Context) error
}

// MemoryRecorder 保存在内存中的输出，用于测试与未配置数据库的运行
type MemoryRecorder struct {
	mtx     sync.Mutex
	records []Record
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, records []Record) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.records = append(r.records, records...)
	return nil
}

func (r *MemoryRecorder) Close(context.Context) error {
	return nil
}

// Records 已记录数据的拷贝
func (r *MemoryRecorder) Records() []Record {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]Record(nil), r.records...)
}
