package render

import "math"

// DistBetweenPoints returns the Euclidean distance between (x1, y1) and
// (x2, y2).
func DistBetweenPoints(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
