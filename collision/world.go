// Package collision is a ray query collaborator for navigation: obstacle boxes
// with a ground footprint indexed by the Chipmunk physics space and a
// vertical span checked per hit.
package collision

import (
	"math"
	"sort"

	"github.com/gorustyt/gonavgraph/common"
	"github.com/gorustyt/gonavgraph/navgraph"
	"github.com/jakecoffman/cp"
)

const (
	categoryStatic uint = 1 << iota
	categoryDynamic
	categoryVolatile
)

func category(k navgraph.BodyKind) uint {
	switch k {
	case navgraph.BodyDynamic:
		return categoryDynamic
	case navgraph.BodyVolatile:
		return categoryVolatile
	}
	return categoryStatic
}

func queryMask(skip navgraph.SkipFlags) uint {
	mask := categoryStatic | categoryDynamic | categoryVolatile
	if skip&navgraph.SkipStatic != 0 {
		mask &^= categoryStatic
	}
	if skip&navgraph.SkipDynamic != 0 {
		mask &^= categoryDynamic
	}
	if skip&navgraph.SkipVolatile != 0 {
		mask &^= categoryVolatile
	}
	return mask
}

// Body is an axis aligned obstacle box.
type Body struct {
	Name      string
	Kind      navgraph.BodyKind
	Character bool // blocks character movement
	Min, Max  common.Vec3

	shape *cp.Shape
}

// World owns the Chipmunk space used as the broadphase for ray queries.
type World struct {
	space  *cp.Space
	bodies map[*cp.Shape]*Body
	order  []*Body
}

func NewWorld() *World {
	return &World{
		space:  cp.NewSpace(),
		bodies: make(map[*cp.Shape]*Body),
	}
}

func (w *World) Bodies() []*Body { return w.order }

// AddBox registers an obstacle spanning min..max. Corners are reordered so
// callers may pass them in any order.
func (w *World) AddBox(name string, minP, maxP common.Vec3, kind navgraph.BodyKind, character bool) *Body {
	lo := common.Vec3{min(minP[0], maxP[0]), min(minP[1], maxP[1]), min(minP[2], maxP[2])}
	hi := common.Vec3{max(minP[0], maxP[0]), max(minP[1], maxP[1]), max(minP[2], maxP[2])}
	b := &Body{Name: name, Kind: kind, Character: character, Min: lo, Max: hi}

	bb := cp.BB{L: float64(lo[0]), B: float64(lo[2]), R: float64(hi[0]), T: float64(hi[2])}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category(kind), cp.ALL_CATEGORIES))
	shape.UserData = b
	w.space.AddShape(shape)
	b.shape = shape

	w.bodies[shape] = b
	w.order = append(w.order, b)
	return b
}

// Remove takes a body out of the world.
func (w *World) Remove(b *Body) {
	if b == nil || b.shape == nil {
		return
	}
	w.space.RemoveShape(b.shape)
	delete(w.bodies, b.shape)
	for i, o := range w.order {
		if o == b {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	b.shape = nil
}

// CastRay implements navgraph.RayCaster.
func (w *World) CastRay(start, end common.Vec3, skip navgraph.SkipFlags) []navgraph.Hit {
	mask := queryMask(skip)
	if mask == 0 {
		return nil
	}
	var hits []navgraph.Hit
	test := func(b *Body) {
		if b == nil || mask&category(b.Kind) == 0 {
			return
		}
		if t, ok := segmentBox(start, end, b.Min, b.Max); ok {
			hits = append(hits, navgraph.Hit{
				Point:     start.Add(end.Sub(start).Mul(t)),
				Fraction:  t,
				Kind:      b.Kind,
				Character: b.Character,
				Body:      b,
			})
		}
	}

	if common.Vdist2DSqr(start, end) < 1e-12 {
		// vertical probes have no footprint to sweep
		for _, b := range w.order {
			test(b)
		}
	} else {
		filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, mask)
		a := cp.Vector{X: float64(start[0]), Y: float64(start[2])}
		c := cp.Vector{X: float64(end[0]), Y: float64(end[2])}
		seen := map[*Body]struct{}{}
		w.space.SegmentQuery(a, c, 0, filter, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
			b := w.bodies[shape]
			if _, dup := seen[b]; dup {
				return
			}
			seen[b] = struct{}{}
			test(b)
		}, nil)
		// segments that start inside a footprint are not reported by the sweep
		for _, b := range w.order {
			if _, ok := seen[b]; !ok && insideFootprint(start, b) {
				test(b)
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Fraction < hits[j].Fraction })
	return hits
}

func insideFootprint(p common.Vec3, b *Body) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] && p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// segmentBox is a slab test of a->b against the box, returning the entry
// fraction.
func segmentBox(a, b, lo, hi common.Vec3) (float32, bool) {
	tmin, tmax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		d := float64(b[i] - a[i])
		o := float64(a[i])
		if math.Abs(d) < 1e-9 {
			if o < float64(lo[i]) || o > float64(hi[i]) {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (float64(lo[i]) - o) * inv
		t2 := (float64(hi[i]) - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return float32(tmin), true
}
