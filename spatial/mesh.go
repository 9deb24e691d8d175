package spatial

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed polygon mesh. Faces may have any number of vertices;
// polygons are fan-triangulated when a BVH is built.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][]int
}

// Triangle is a single mesh triangle tagged with its source face.
type Triangle struct {
	A, B, C r3.Vec
	Face    int
}

// Triangles fan-triangulates the mesh. Faces with fewer than three vertices
// are ignored.
func (m Mesh) Triangles() ([]Triangle, error) {
	tris := make([]Triangle, 0, len(m.Faces))
	for fi, face := range m.Faces {
		for _, vi := range face {
			if vi < 0 || vi >= len(m.Vertices) {
				return nil, fmt.Errorf("%w: face %d vertex %d", ErrBadFace, fi, vi)
			}
		}
		for k := 1; k+1 < len(face); k++ {
			tris = append(tris, Triangle{
				A:    m.Vertices[face[0]],
				B:    m.Vertices[face[k]],
				C:    m.Vertices[face[k+1]],
				Face: fi,
			})
		}
	}
	return tris, nil
}

// Normal returns the unit normal of t following the A, B, C winding.
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.B, t.A), r3.Sub(t.C, t.A))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// ClosestPoint returns the point of t nearest to p.
// Uses the Voronoi-region walk from Ericson, Real-Time Collision Detection 5.1.5.
func (t Triangle) ClosestPoint(p r3.Vec) r3.Vec {
	a, b, c := t.A, t.B, t.C
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)

	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab))
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// box is an axis-aligned bounding box.
type box struct {
	min, max r3.Vec
}

func emptyBox() box {
	inf := 1e308
	return box{min: r3.Vec{X: inf, Y: inf, Z: inf}, max: r3.Vec{X: -inf, Y: -inf, Z: -inf}}
}

func (b box) extend(p r3.Vec) box {
	return box{
		min: r3.Vec{X: min(b.min.X, p.X), Y: min(b.min.Y, p.Y), Z: min(b.min.Z, p.Z)},
		max: r3.Vec{X: max(b.max.X, p.X), Y: max(b.max.Y, p.Y), Z: max(b.max.Z, p.Z)},
	}
}

func (b box) union(o box) box {
	return b.extend(o.min).extend(o.max)
}

// dist2 returns the squared distance from p to the box (zero inside).
func (b box) dist2(p r3.Vec) float64 {
	dx := max(b.min.X-p.X, 0, p.X-b.max.X)
	dy := max(b.min.Y-p.Y, 0, p.Y-b.max.Y)
	dz := max(b.min.Z-p.Z, 0, p.Z-b.max.Z)
	return dx*dx + dy*dy + dz*dz
}

// longestAxis returns 0, 1 or 2 for the widest extent.
func (b box) longestAxis() int {
	s := r3.Sub(b.max, b.min)
	switch {
	case s.X >= s.Y && s.X >= s.Z:
		return 0
	case s.Y >= s.Z:
		return 1
	}
	return 2
}

func axis(v r3.Vec, a int) float64 {
	switch a {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
