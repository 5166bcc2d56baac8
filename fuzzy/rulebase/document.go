// 规则库文档：以YAML描述输入输出变量、模糊集形状、规则与规则集
package rulebase

import (
	"fmt"
	"os"

	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy"
	"gopkg.in/yaml.v2"
)

// 形状名
const (
	ShapeLeftShoulder  = "left_shoulder"
	ShapeRightShoulder = "right_shoulder"
	ShapeTriangle      = "triangle"
	ShapeTrapezoid     = "trapezoid"
	ShapePolyline      = "polyline"
	ShapeConstant      = "constant"
)

// Set 模糊集定义
type Set struct {
	Name   string    `yaml:"name"`
	Shape  string    `yaml:"shape"`
	Points []float64 `yaml:"points"` // 形状参数，polyline为展开的x,y序列
}

// Variable 输入或输出变量定义
type Variable struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Sets []Set   `yaml:"sets"`
}

// Rule 规则定义，条件与结论均为"变量名.模糊集名"
type Rule struct {
	Name string   `yaml:"name"`
	If   []string `yaml:"if"`
	Then string   `yaml:"then"`
}

// RuleSet 规则集定义
// 说明：Include中的规则集必须先于本规则集定义，其规则排在本规则集自身规则之前
type RuleSet struct {
	Name    string   `yaml:"name"`
	Include []string `yaml:"include,omitempty"`
	Rules   []string `yaml:"rules"`
}

// Document 规则库文档的根结构
type Document struct {
	IntegralSteps int        `yaml:"integral_steps,omitempty"` // 去模糊化积分步数，0表示默认值
	Inputs        []Variable `yaml:"inputs"`
	Outputs       []Variable `yaml:"outputs"`
	Rules         []Rule     `yaml:"rules"`
	RuleSets      []RuleSet  `yaml:"rule_sets"`
}

// Parse 解析YAML规则库（严格模式，未知字段报错）
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("rulebase: parse: %w", err)
	}
	return &doc, nil
}

// LoadFile 从文件读取规则库
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rulebase: %w", err)
	}
	return Parse(data)
}

// NewShape 根据形状名与参数构造隶属函数
func NewShape(shape string, points []float64) (fuzzy.MembershipFunc, error) {
	want := map[string]int{
		ShapeLeftShoulder:  2,
		ShapeRightShoulder: 2,
		ShapeTriangle:      3,
		ShapeTrapezoid:     4,
		ShapeConstant:      1,
	}
	if n, ok := want[shape]; ok && len(points) != n {
		return nil, fmt.Errorf("rulebase: shape %s needs %d points, got %d", shape, n, len(points))
	}
	p := points
	switch shape {
	case ShapeConstant:
		return fuzzy.Constant(p[0]), nil
	case ShapePolyline:
		if len(p) == 0 || len(p)%2 != 0 {
			return nil, fmt.Errorf("rulebase: polyline needs x,y pairs, got %d numbers", len(p))
		}
		vertices := make([]fuzzy.Point, 0, len(p)/2)
		for i := 0; i < len(p); i += 2 {
			vertices = append(vertices, fuzzy.Point{X: p[i], Y: p[i+1]})
		}
		line, err := fuzzy.NewPolyline(vertices...)
		if err != nil {
			return nil, err
		}
		return line, nil
	}
	for i := 1; i < len(p); i++ {
		if p[i] < p[i-1] {
			return nil, fmt.Errorf("rulebase: shape %s points must be ascending: %v", shape, p)
		}
	}
	switch shape {
	case ShapeLeftShoulder:
		return fuzzy.LeftShoulder{A: p[0], B: p[1]}, nil
	case ShapeRightShoulder:
		return fuzzy.RightShoulder{A: p[0], B: p[1]}, nil
	case ShapeTriangle:
		return fuzzy.Triangle{A: p[0], B: p[1], C: p[2]}, nil
	case ShapeTrapezoid:
		return fuzzy.Trapezoid{A: p[0], B: p[1], C: p[2], D: p[3]}, nil
	default:
		return nil, fmt.Errorf("rulebase: unknown shape %q", shape)
	}
}
