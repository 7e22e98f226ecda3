package model

import "math"

type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func Vec3iFromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

// FloorVec converts a host-reported entity location to a block position.
func FloorVec(x, y, z float64) Vec3i {
	return Vec3i{X: int(math.Floor(x)), Y: int(math.Floor(y)), Z: int(math.Floor(z))}
}

// Distance is the euclidean distance between two block positions.
func Distance(a, b Vec3i) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
