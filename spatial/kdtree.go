// Package spatial provides read-only nearest-neighbor indices used as field
// primitives: a k-d tree over site points and a bounding-volume hierarchy over
// triangulated meshes.
//
// Indices are immutable after construction and safe for concurrent queries.
package spatial

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNoGeometry is returned when an index is built from empty input.
	ErrNoGeometry = errors.New("spatial: no input geometry")
	// ErrNoNearest is returned when a query finds no candidate.
	ErrNoNearest = errors.New("spatial: no nearest point found")
	// ErrBadFace is returned for a face that references a missing vertex.
	ErrBadFace = errors.New("spatial: face references missing vertex")
)

// Hit is the result of a nearest-site query.
type Hit struct {
	Index    int     // index of the site in the input list
	Point    r3.Vec  // site position
	Distance float64 // Euclidean distance from the query point
}

// PointIndex answers nearest-site queries. Implementations report no hit for
// a query point with a NaN or infinite coordinate.
type PointIndex interface {
	Nearest(p r3.Vec) (Hit, bool)
}

// KDTree is a PointIndex backed by a gonum k-d tree.
type KDTree struct {
	tree *kdtree.Tree
	n    int
}

// NewKDTree builds a k-d tree over sites. The input slice is copied.
func NewKDTree(sites []r3.Vec) (*KDTree, error) {
	if len(sites) == 0 {
		return nil, ErrNoGeometry
	}
	start := time.Now()
	pts := make(sitePoints, len(sites))
	for i, s := range sites {
		pts[i] = sitePoint{Vec: s, idx: i}
	}
	t := &KDTree{tree: kdtree.New(pts, false), n: len(sites)}
	slog.Debug("kdtree built", "sites", len(sites), "elapsed_us", time.Since(start).Microseconds())
	return t, nil
}

// Len returns the number of indexed sites.
func (t *KDTree) Len() int { return t.n }

// Nearest returns the site closest to p.
func (t *KDTree) Nearest(p r3.Vec) (Hit, bool) {
	if t == nil || t.tree == nil || !Finite(p) {
		return Hit{}, false
	}
	c, d2 := t.tree.Nearest(sitePoint{Vec: p, idx: -1})
	if c == nil {
		return Hit{}, false
	}
	s := c.(sitePoint)
	return Hit{Index: s.idx, Point: s.Vec, Distance: math.Sqrt(d2)}, true
}

// Finite reports whether every coordinate of p is finite.
func Finite(p r3.Vec) bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// sitePoint is a kdtree.Comparable that remembers its input position.
type sitePoint struct {
	r3.Vec
	idx int
}

func coord(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("spatial: illegal dimension")
}

// Compare returns the signed distance of p from the plane through c
// perpendicular to dimension d.
func (p sitePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(sitePoint)
	return coord(p.Vec, d) - coord(q.Vec, d)
}

// Dims returns the number of dimensions.
func (p sitePoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between p and c.
func (p sitePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(sitePoint)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}

// sitePoints implements kdtree.Interface.
type sitePoints []sitePoint

func (p sitePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p sitePoints) Len() int                      { return len(p) }
func (p sitePoints) Pivot(d kdtree.Dim) int {
	return sitePlane{sitePoints: p, Dim: d}.Pivot()
}
func (p sitePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// sitePlane sorts sites along one dimension.
type sitePlane struct {
	kdtree.Dim
	sitePoints
}

func (p sitePlane) Less(i, j int) bool {
	return coord(p.sitePoints[i].Vec, p.Dim) < coord(p.sitePoints[j].Vec, p.Dim)
}
func (p sitePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	p.sitePoints = p.sitePoints[start:end]
	return p
}
func (p sitePlane) Swap(i, j int) {
	p.sitePoints[i], p.sitePoints[j] = p.sitePoints[j], p.sitePoints[i]
}
