package geom

import (
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b image.Rectangle
		want float64
	}{
		{"identical", image.Rect(10, 10, 50, 50), image.Rect(10, 10, 50, 50), 1.0},
		{"disjoint", image.Rect(0, 0, 10, 10), image.Rect(20, 20, 30, 30), 0.0},
		{"touching edges", image.Rect(0, 0, 10, 10), image.Rect(10, 0, 20, 10), 0.0},
		// inner 20x20=400, outer 100x100=10000
		{"contained", image.Rect(0, 0, 100, 100), image.Rect(40, 40, 60, 60), 0.04},
		// overlap 5x10=50, union 100+100-50=150
		{"half overlap", image.Rect(0, 0, 10, 10), image.Rect(5, 0, 15, 10), 50.0 / 150.0},
		{"zero area a", image.Rect(5, 5, 5, 5), image.Rect(0, 0, 10, 10), 0.0},
		{"inverted corners", image.Rectangle{Min: image.Pt(50, 50), Max: image.Pt(10, 10)}, image.Rect(0, 0, 100, 100), 0.0},
		{"both degenerate", image.Rect(3, 3, 3, 3), image.Rect(3, 3, 3, 3), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IoU(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IoU(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// IoU is symmetric
			if rev := IoU(tt.b, tt.a); math.Abs(rev-got) > 1e-9 {
				t.Errorf("IoU not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestArea(t *testing.T) {
	if got := Area(image.Rect(0, 0, 10, 20)); got != 200 {
		t.Errorf("Area = %d, want 200", got)
	}
	if got := Area(image.Rectangle{Min: image.Pt(10, 10), Max: image.Pt(0, 0)}); got != 0 {
		t.Errorf("Area of inverted rect = %d, want 0", got)
	}
	if got := Area(image.Rect(5, 5, 5, 9)); got != 0 {
		t.Errorf("Area of zero-width rect = %d, want 0", got)
	}
}

func TestCenter(t *testing.T) {
	c := Center(image.Rect(100, 100, 150, 250))
	if c.X != 125 || c.Y != 175 {
		t.Errorf("Center = %v, want (125,175)", c)
	}
	// odd extents land on half-pixels
	c = Center(image.Rect(0, 0, 5, 5))
	if c.X != 2.5 || c.Y != 2.5 {
		t.Errorf("Center = %v, want (2.5,2.5)", c)
	}
}

func TestDist(t *testing.T) {
	d := Dist(r2.Point{X: 0, Y: 0}, r2.Point{X: 3, Y: 4})
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("Dist = %v, want 5", d)
	}
	if d := Dist(r2.Point{X: 7, Y: -2}, r2.Point{X: 7, Y: -2}); d != 0 {
		t.Errorf("Dist of equal points = %v, want 0", d)
	}
}

func TestContains(t *testing.T) {
	r := image.Rect(10, 10, 20, 20)
	tests := []struct {
		name string
		p    r2.Point
		want bool
	}{
		{"interior", r2.Point{X: 15, Y: 15}, true},
		{"min corner", r2.Point{X: 10, Y: 10}, true},
		{"max corner inclusive", r2.Point{X: 20, Y: 20}, true},
		{"outside", r2.Point{X: 21, Y: 15}, false},
		{"above", r2.Point{X: 15, Y: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(r, tt.p); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", r, tt.p, got, tt.want)
			}
		})
	}
}

func TestRectAround(t *testing.T) {
	r := RectAround(r2.Point{X: 100, Y: 200}, 40, 60)
	if r != image.Rect(80, 170, 120, 230) {
		t.Errorf("RectAround = %v", r)
	}
	if got := Center(r); got.X != 100 || got.Y != 200 {
		t.Errorf("center of RectAround = %v, want (100,200)", got)
	}
}
