package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/fuzzysim/fuzzy"
)

func TestShapes(t *testing.T) {
	cases := []struct {
		name string
		f    fuzzy.MembershipFunc
		x    float64
		want float64
	}{
		{"left below", fuzzy.LeftShoulder{A: 1.5, B: 5}, 0, 1},
		{"left slope", fuzzy.LeftShoulder{A: 1.5, B: 5}, 3.25, 0.5},
		{"left above", fuzzy.LeftShoulder{A: 1.5, B: 5}, 5, 0},
		{"right below", fuzzy.RightShoulder{A: 20, B: 35}, 19, 0},
		{"right slope", fuzzy.RightShoulder{A: 20, B: 35}, 23, 0.2},
		{"right above", fuzzy.RightShoulder{A: 20, B: 35}, 100, 1},
		{"triangle peak", fuzzy.Triangle{A: 0.3, B: 0.6, C: 0.8}, 0.6, 1},
		{"triangle down", fuzzy.Triangle{A: 0.3, B: 0.6, C: 0.8}, 0.7, 0.5},
		{"triangle outside", fuzzy.Triangle{A: 0.3, B: 0.6, C: 0.8}, 0.9, 0},
		{"trapezoid rise", fuzzy.Trapezoid{A: 4, B: 10, C: 20, D: 25}, 7, 0.5},
		{"trapezoid top", fuzzy.Trapezoid{A: 4, B: 10, C: 20, D: 25}, 20, 1},
		{"trapezoid fall", fuzzy.Trapezoid{A: 4, B: 10, C: 20, D: 25}, 24, 0.2},
		{"step left", fuzzy.LeftShoulder{A: 0.5, B: 0.5}, 0.5, 0},
		{"constant", fuzzy.Constant(0.3), 12, 0.3},
		{"linear", fuzzy.Linear{Slope: -1, Intercept: 1}, 0.25, 0.75},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, c.f.Degree(c.x), 1e-9)
		})
	}
}

func TestPolyline(t *testing.T) {
	p, err := fuzzy.NewPolyline(
		fuzzy.Point{X: 1, Y: 1},
		fuzzy.Point{X: 2, Y: 0},
		fuzzy.Point{X: 7.5, Y: 0},
		fuzzy.Point{X: 8, Y: 1},
	)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Degree(0))
	assert.InDelta(t, 0.5, p.Degree(1.5), 1e-12)
	assert.Equal(t, 0.0, p.Degree(5))
	assert.InDelta(t, 0.5, p.Degree(7.75), 1e-12)
	assert.Equal(t, 1.0, p.Degree(9))
	assert.Contains(t, p.String(), "Polyline")

	_, err = fuzzy.NewPolyline()
	assert.Error(t, err)
	_, err = fuzzy.NewPolyline(fuzzy.Point{X: 2}, fuzzy.Point{X: 1})
	assert.Error(t, err)

	// 零值与nil折线没有顶点
	assert.Equal(t, 0.0, (&fuzzy.Polyline{}).Degree(1))
	assert.Equal(t, 0.0, (*fuzzy.Polyline)(nil).Degree(1))
	assert.Contains(t, (*fuzzy.Polyline)(nil).String(), "nil")
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "Triangle(0.3, 0.6, 0.8)", fuzzy.Triangle{A: 0.3, B: 0.6, C: 0.8}.String())
	assert.Equal(t, "LeftShoulder(0, 0.05)", fuzzy.LeftShoulder{A: 0, B: 0.05}.String())
}
