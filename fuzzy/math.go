package fuzzy

// momentIntegral ∫[x1,x2] x·y(x) dx，y为(x1,y1)与(x2,y2)之间的线性插值
func momentIntegral(x1, x2, y1, y2 float64) float64 {
	dy := y2 - y1
	result := (y1*(x2*x2-x1*x1) - x1*(x2+x1)*dy) / 2
	result += (x2*x2 + x2*x1 + x1*x1) * dy / 3
	return result
}

// areaIntegral ∫[x1,x2] y(x) dx，梯形公式（对线性插值精确）
func areaIntegral(x1, x2, y1, y2 float64) float64 {
	return (x2 - x1) * (y1 + y2) / 2
}
