package geometry

// Quad is a four-cornered convex polygon, listed clockwise in a y-down
// coordinate system: top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point2D

// Points returns the quad corners as a slice.
func (q Quad) Points() []Point2D {
	return []Point2D{q[0], q[1], q[2], q[3]}
}

// Contains reports whether p lies inside the quad or on its boundary.
func (q Quad) Contains(p Point2D) bool {
	return PointInConvex(p, q.Points())
}

// PointInConvex tests if a point is inside a convex polygon, boundary
// included. Vertex order may be either orientation.
func PointInConvex(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	var pos, neg bool
	n := len(polygon)
	for i := 0; i < n; i++ {
		cross := crossProduct(polygon[i], polygon[(i+1)%n], p)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// Rect is an axis-aligned rectangle spanning Min to Max.
type Rect struct {
	Min, Max Point2D
}

// ClipPolygon returns the part of a convex polygon that lies inside r, or
// nil when nothing does. Vertices that are not finite are dropped with the
// edges touching them.
func (r Rect) ClipPolygon(polygon []Point2D) []Point2D {
	edges := []func(Point2D) float64{
		func(p Point2D) float64 { return p.X - r.Min.X },
		func(p Point2D) float64 { return r.Max.X - p.X },
		func(p Point2D) float64 { return p.Y - r.Min.Y },
		func(p Point2D) float64 { return r.Max.Y - p.Y },
	}
	out := polygon
	for _, inside := range edges {
		out = clipHalfPlane(out, inside)
		if len(out) < 3 {
			return nil
		}
	}
	return out
}

// clipHalfPlane keeps the part of the polygon where inside is not negative.
func clipHalfPlane(polygon []Point2D, inside func(Point2D) float64) []Point2D {
	var out []Point2D
	n := len(polygon)
	for i, a := range polygon {
		b := polygon[(i+1)%n]
		da, db := inside(a), inside(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0 && db < 0) || (da < 0 && db >= 0) {
			out = append(out, a.Add(b.Sub(a).Scale(da/(da-db))))
		}
	}
	return out
}
