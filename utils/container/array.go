package container

import (
	"sort"
	"sync"
)

// IIncrementalItem 可放入增量数组的元素，记录自己在数组中的下标
type IIncrementalItem interface {
	Index() int
	SetIndex(index int)
}

// IncrementalItemBase 可嵌入的下标字段，用于快速实现IIncrementalItem
type IncrementalItemBase struct {
	index int
}

func (b *IncrementalItemBase) Index() int {
	return b.index
}

func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组
// 功能：Add/Remove可在更新阶段并发调用，只记录待办；
// Prepare在准备阶段统一生效，生效后元素顺序不保证
type IncrementalArray[T IIncrementalItem] struct {
	data []T

	pendingMtx sync.Mutex
	add        []T
	remove     []T
}

// NewIncrementalArray 创建空的增量数组
func NewIncrementalArray[T IIncrementalItem]() *IncrementalArray[T] {
	return &IncrementalArray[T]{}
}

// Len 已生效元素个数
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 已生效的元素，返回底层切片，调用方不得修改
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Add 登记待添加元素
func (a *IncrementalArray[T]) Add(value T) {
	a.pendingMtx.Lock()
	defer a.pendingMtx.Unlock()
	a.add = append(a.add, value)
}

// Remove 登记待删除元素，元素必须已生效且只登记一次
func (a *IncrementalArray[T]) Remove(value T) {
	a.pendingMtx.Lock()
	defer a.pendingMtx.Unlock()
	a.remove = append(a.remove, value)
}

// Prepare 执行全部待办
// 算法说明：
// 1. 新元素优先填入被删除元素的空位
// 2. 剩余的新元素追加到末尾
// 3. 剩余的空位按下标从大到小处理，用末尾元素填补后截断
// 返回：本次添加与删除的元素个数
func (a *IncrementalArray[T]) Prepare() (added, removed int) {
	a.pendingMtx.Lock()
	defer a.pendingMtx.Unlock()
	added, removed = len(a.add), len(a.remove)

	n := min(added, removed)
	for i := 0; i < n; i++ {
		a.place(a.remove[i].Index(), a.add[i])
	}
	for _, x := range a.add[n:] {
		x.SetIndex(len(a.data))
		a.data = append(a.data, x)
	}
	holes := make([]int, 0, removed-n)
	for _, x := range a.remove[n:] {
		holes = append(holes, x.Index())
	}
	// 从大到小填补，保证被搬运的末尾元素不是待删除元素
	sort.Sort(sort.Reverse(sort.IntSlice(holes)))
	for _, ind := range holes {
		last := len(a.data) - 1
		if ind != last {
			a.place(ind, a.data[last])
		}
		var zero T
		a.data[last] = zero
		a.data = a.data[:last]
	}

	a.add = a.add[:0]
	a.remove = a.remove[:0]
	return
}

func (a *IncrementalArray[T]) place(ind int, x T) {
	a.data[ind] = x
	x.SetIndex(ind)
}
