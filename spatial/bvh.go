package spatial

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// leafSize is the maximum number of triangles stored in a BVH leaf.
const leafSize = 4

// SurfaceHit is the result of a nearest-surface query.
type SurfaceHit struct {
	Point    r3.Vec  // closest point on the surface
	Normal   r3.Vec  // unit normal of the face containing Point
	Face     int     // source face index
	Distance float64 // Euclidean distance from the query point
}

// SurfaceIndex answers nearest-point-on-surface queries. Like PointIndex,
// non-finite query points get no hit.
type SurfaceIndex interface {
	NearestSurface(p r3.Vec) (SurfaceHit, bool)
}

// BVH is a bounding-volume hierarchy over mesh triangles.
type BVH struct {
	tris  []Triangle
	norms []r3.Vec
	nodes []bvhNode
}

// bvhNode is either an inner node (count == 0) with children at left and
// right, or a leaf covering tris[start:start+count].
type bvhNode struct {
	bounds      box
	left, right int
	start       int
	count       int
}

// NewBVH builds a BVH over the triangles of m. Zero-area triangles are
// skipped; a mesh with none left yields an empty index whose queries report
// no hit.
func NewBVH(m Mesh) (*BVH, error) {
	start := time.Now()
	all, err := m.Triangles()
	if err != nil {
		return nil, err
	}

	b := &BVH{}
	for _, t := range all {
		n := t.Normal()
		if n == (r3.Vec{}) {
			continue
		}
		b.tris = append(b.tris, t)
		b.norms = append(b.norms, n)
	}
	if len(b.tris) > 0 {
		order := make([]int, len(b.tris))
		for i := range order {
			order[i] = i
		}
		b.build(order)
		b.reorder(order)
	}

	slog.Debug("bvh built",
		"faces", len(m.Faces),
		"triangles", len(b.tris),
		"skipped", len(all)-len(b.tris),
		"nodes", len(b.nodes),
		"elapsed_us", time.Since(start).Microseconds(),
	)
	return b, nil
}

// Len returns the number of indexed triangles.
func (b *BVH) Len() int { return len(b.tris) }

func (b *BVH) triBox(i int) box {
	t := b.tris[i]
	return emptyBox().extend(t.A).extend(t.B).extend(t.C)
}

func centroid(t Triangle) r3.Vec {
	return r3.Scale(1.0/3, r3.Add(t.A, r3.Add(t.B, t.C)))
}

// build lays out nodes for the triangle order, partitioning order in place.
func (b *BVH) build(order []int) {
	type task struct {
		node, lo, hi int
	}
	b.nodes = append(b.nodes, bvhNode{})
	stack := []task{{0, 0, len(order)}}
	for len(stack) > 0 {
		tk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bounds := emptyBox()
		cbounds := emptyBox()
		for _, ti := range order[tk.lo:tk.hi] {
			bounds = bounds.union(b.triBox(ti))
			cbounds = cbounds.extend(centroid(b.tris[ti]))
		}
		n := &b.nodes[tk.node]
		n.bounds = bounds

		if tk.hi-tk.lo <= leafSize {
			n.start, n.count = tk.lo, tk.hi-tk.lo
			continue
		}

		ax := cbounds.longestAxis()
		part := order[tk.lo:tk.hi]
		slices.SortFunc(part, func(i, j int) int {
			ci, cj := axis(centroid(b.tris[i]), ax), axis(centroid(b.tris[j]), ax)
			switch {
			case ci < cj:
				return -1
			case ci > cj:
				return 1
			}
			return i - j
		})
		mid := tk.lo + (tk.hi-tk.lo)/2

		left := len(b.nodes)
		b.nodes = append(b.nodes, bvhNode{}, bvhNode{})
		n = &b.nodes[tk.node]
		n.left, n.right = left, left+1
		stack = append(stack, task{left, tk.lo, mid}, task{left + 1, mid, tk.hi})
	}
}

// reorder permutes tris and norms so leaves index contiguous ranges.
func (b *BVH) reorder(order []int) {
	tris := make([]Triangle, len(order))
	norms := make([]r3.Vec, len(order))
	for i, ti := range order {
		tris[i] = b.tris[ti]
		norms[i] = b.norms[ti]
	}
	b.tris, b.norms = tris, norms
}

// NearestSurface returns the closest point on the mesh surface to p.
func (b *BVH) NearestSurface(p r3.Vec) (SurfaceHit, bool) {
	if b == nil || len(b.tris) == 0 || !Finite(p) {
		return SurfaceHit{}, false
	}

	best := math.Inf(1)
	bestTri := -1
	var bestPoint r3.Vec

	stack := []int{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := b.nodes[ni]
		if n.bounds.dist2(p) > best {
			continue
		}
		if n.count > 0 {
			for ti := n.start; ti < n.start+n.count; ti++ {
				q := b.tris[ti].ClosestPoint(p)
				d2 := r3.Norm2(r3.Sub(q, p))
				if d2 < best {
					best, bestTri, bestPoint = d2, ti, q
				}
			}
			continue
		}
		// Visit the nearer child first.
		l, r := n.left, n.right
		if b.nodes[r].bounds.dist2(p) < b.nodes[l].bounds.dist2(p) {
			l, r = r, l
		}
		stack = append(stack, r, l)
	}

	if bestTri < 0 {
		return SurfaceHit{}, false
	}
	return SurfaceHit{
		Point:    bestPoint,
		Normal:   b.norms[bestTri],
		Face:     b.tris[bestTri].Face,
		Distance: math.Sqrt(best),
	}, true
}
