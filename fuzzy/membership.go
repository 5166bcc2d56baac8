package fuzzy

import (
	"fmt"
	"sort"
)

// MembershipFunc 隶属函数，将精确值映射为隶属度
// 说明：引擎不要求各模糊集构成单位划分，形状的正确性由调用方保证
type MembershipFunc interface {
	Degree(x float64) float64
}

// Func 任意一元函数作为隶属函数
type Func func(x float64) float64

// Degree 实现MembershipFunc
func (f Func) Degree(x float64) float64 {
	return f(x)
}

// 以下为分段线性形状，交通场景中所有隶属函数都可以用它们表达

// LeftShoulder 左肩形：x<A时为1，[A,B)线性下降，x>=B时为0
type LeftShoulder struct {
	A, B float64
}

// Degree 实现MembershipFunc
func (s LeftShoulder) Degree(x float64) float64 {
	switch {
	case x < s.A:
		return 1
	case x < s.B:
		return (s.B - x) / (s.B - s.A)
	default:
		return 0
	}
}

func (s LeftShoulder) String() string {
	return fmt.Sprintf("LeftShoulder(%v, %v)", s.A, s.B)
}

// RightShoulder 右肩形：x<A时为0，[A,B)线性上升，x>=B时为1
type RightShoulder struct {
	A, B float64
}

// Degree 实现MembershipFunc
func (s RightShoulder) Degree(x float64) float64 {
	switch {
	case x < s.A:
		return 0
	case x < s.B:
		return (x - s.A) / (s.B - s.A)
	default:
		return 1
	}
}

func (s RightShoulder) String() string {
	return fmt.Sprintf("RightShoulder(%v, %v)", s.A, s.B)
}

// Trapezoid 梯形：[A,B)上升，[B,C]为1，(C,D)下降，其余为0
type Trapezoid struct {
	A, B, C, D float64
}

// Degree 实现MembershipFunc
func (s Trapezoid) Degree(x float64) float64 {
	switch {
	case x < s.A:
		return 0
	case x < s.B:
		return (x - s.A) / (s.B - s.A)
	case x <= s.C:
		return 1
	case x < s.D:
		return (s.D - x) / (s.D - s.C)
	default:
		return 0
	}
}

func (s Trapezoid) String() string {
	return fmt.Sprintf("Trapezoid(%v, %v, %v, %v)", s.A, s.B, s.C, s.D)
}

// Triangle 三角形：峰值在B处
type Triangle struct {
	A, B, C float64
}

// Degree 实现MembershipFunc
func (s Triangle) Degree(x float64) float64 {
	return Trapezoid{A: s.A, B: s.B, C: s.B, D: s.C}.Degree(x)
}

func (s Triangle) String() string {
	return fmt.Sprintf("Triangle(%v, %v, %v)", s.A, s.B, s.C)
}

// Constant 常数隶属度
type Constant float64

// Degree 实现MembershipFunc
func (c Constant) Degree(float64) float64 {
	return float64(c)
}

// Linear 直线 y=Slope*x+Intercept（不截断）
type Linear struct {
	Slope, Intercept float64
}

// Degree 实现MembershipFunc
func (l Linear) Degree(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Point 折线顶点
type Point struct {
	X, Y float64
}

// Polyline 一般分段线性曲线
// 说明：顶点按X升序，首顶点之前取首顶点的Y，末顶点之后取末顶点的Y
type Polyline struct {
	points []Point
}

// NewPolyline 创建折线隶属函数
// 返回：顶点为空或X未按非降序排列时返回错误
func NewPolyline(points ...Point) (*Polyline, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("fuzzy: polyline needs at least one point")
	}
	if !sort.SliceIsSorted(points, func(i, j int) bool { return points[i].X < points[j].X }) {
		return nil, fmt.Errorf("fuzzy: polyline points must be sorted by x: %v", points)
	}
	return &Polyline{points: append([]Point(nil), points...)}, nil
}

// Degree 实现MembershipFunc
// 说明：零值或nil折线没有顶点，隶属度恒为0
func (p *Polyline) Degree(x float64) float64 {
	if p == nil || len(p.points) == 0 {
		return 0
	}
	n := len(p.points)
	if x <= p.points[0].X {
		return p.points[0].Y
	}
	if x >= p.points[n-1].X {
		return p.points[n-1].Y
	}
	// 第一个X大于x的顶点
	i := sort.Search(n, func(i int) bool { return p.points[i].X > x })
	a, b := p.points[i-1], p.points[i]
	return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
}

func (p *Polyline) String() string {
	if p == nil {
		return "Polyline<nil>"
	}
	return fmt.Sprintf("Polyline%v", p.points)
}
