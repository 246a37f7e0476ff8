// Package geom provides pixel-space geometry shared by the tracking core:
// box overlap, centers, areas, and distances over axis-aligned bounding
// boxes. All functions are pure and tolerate degenerate boxes (swapped or
// collapsed corners score zero area and zero overlap, never an error).
package geom

import (
	"image"

	"github.com/golang/geo/r2"
)

// Area returns the pixel area of r, or 0 when r is empty or malformed.
func Area(r image.Rectangle) int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// IoU returns the intersection-over-union of two boxes in [0,1].
// Disjoint or degenerate boxes score 0; identical non-empty boxes score 1.
func IoU(a, b image.Rectangle) float64 {
	inter := Area(a.Intersect(b))
	if inter == 0 {
		return 0
	}
	union := Area(a) + Area(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Center returns the midpoint of r.
func Center(r image.Rectangle) r2.Point {
	return r2.Point{
		X: float64(r.Min.X+r.Max.X) / 2,
		Y: float64(r.Min.Y+r.Max.Y) / 2,
	}
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// Contains reports whether p lies inside r, edges inclusive. This differs
// from image.Point.In, which excludes the max edge.
func Contains(r image.Rectangle, p r2.Point) bool {
	return p.X >= float64(r.Min.X) && p.X <= float64(r.Max.X) &&
		p.Y >= float64(r.Min.Y) && p.Y <= float64(r.Max.Y)
}

// RectAround builds a w×h box centered on c, truncating to integer pixels.
func RectAround(c r2.Point, w, h int) image.Rectangle {
	x := int(c.X) - w/2
	y := int(c.Y) - h/2
	return image.Rect(x, y, x+w, y+h)
}
