// SPDX-License-Identifier: EPL-2.0

package utils

// CatmullRom evaluates the Catmull-Rom spline through four neighbouring
// samples at t in [0, 1] between p1 and p2. t == 0 yields p1 and t == 1
// yields p2, and samples on a straight line stay on it.
func CatmullRom(p0, p1, p2, p3, t float32) float32 {
	c3 := 0.5 * (3*(p1-p2) + p3 - p0)
	c2 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c1 := 0.5 * (p2 - p0)

	return ((c3*t+c2)*t+c1)*t + p1
}
