package pathfind

import (
	"math"

	"github.com/gorustyt/gonavgraph/common"
	"github.com/gorustyt/gonavgraph/navgraph"
	"go.uber.org/zap"
)

const seedBuckets = 8

// AdmissionFunc vets an edge before the search relaxes it. Returning false
// skips the edge for the current search.
type AdmissionFunc func(from *navgraph.NavNode, e navgraph.NavEdge) bool

type Option func(pf *PathFinder)

func WithMaxIterations(n int) Option { return func(pf *PathFinder) { pf.maxIter = n } }

func WithAdmission(f AdmissionFunc) Option { return func(pf *PathFinder) { pf.admit = f } }

func WithLogger(l *zap.Logger) Option { return func(pf *PathFinder) { pf.logger = l } }

// PathFinder searches a compiled graph. The graph may be shared between
// finders; a single finder must not run two searches at once.
type PathFinder struct {
	g       *navgraph.Graph
	pool    nodePool
	open    NodeQueue[*searchNode]
	maxIter int
	admit   AdmissionFunc
	logger  *zap.Logger

	start, goal common.Vec3
	goals       []int32
	goalCount   []int32 // goal set members per component
	openCount   []int32 // reached, not discarded nodes per component
	goalSize    int
	iter        int
	cands       []seedCandidate
}

type seedCandidate struct {
	node   int32
	dist   float32
	bucket int
	used   bool
}

func New(g *navgraph.Graph, opts ...Option) *PathFinder {
	pf := &PathFinder{
		g:    g,
		open: NewNodeQueue(searchLess),
	}
	for _, opt := range opts {
		opt(pf)
	}
	if pf.logger == nil {
		pf.logger = zap.L()
	}
	return pf
}

// SetMaxIterations caps the number of nodes popped per search. Zero disables
// the cap.
func (pf *PathFinder) SetMaxIterations(n int) { pf.maxIter = n }

func (pf *PathFinder) SetAdmissionCallback(f AdmissionFunc) { pf.admit = f }

// Iterations reports how many nodes the last search popped.
func (pf *PathFinder) Iterations() int { return pf.iter }

// GetPath appends the route from start to goal to out in goal-to-start order.
// A clear direct shot succeeds without appending anything. On failure out is
// returned unchanged.
func (pf *PathFinder) GetPath(start, goal common.Vec3, out []*navgraph.NavNode) ([]*navgraph.NavNode, bool) {
	pf.iter = 0
	g := pf.g
	p := g.Params()
	if common.HeightDelta(start, goal) <= p.MaxHeight*1.5 && g.FreeLineOfSight(start, goal, navgraph.SkipMovable) {
		observeSearch(resultDirect, 0)
		return out, true
	}
	if !g.Compiled() || g.Len() == 0 {
		observeSearch(resultNoPath, 0)
		return out, false
	}

	pf.begin(start, goal)
	defer pf.open.Reset()
	if pf.seedGoals() == 0 || pf.seedStarts() == 0 {
		observeSearch(resultNoPath, 0)
		return out, false
	}
	pf.prune()

	found, result := pf.search()
	observeSearch(result, pf.iter)
	if found == nil {
		pf.logger.Debug("pathfind: no path",
			zap.String("result", result),
			zap.Int("iterations", pf.iter))
		return out, false
	}
	for n := found; ; {
		out = append(out, g.Node(int(n.node)))
		if n.parent < 0 {
			break
		}
		n = pf.pool.peek(n.parent)
	}
	return out, true
}

func (pf *PathFinder) begin(start, goal common.Vec3) {
	pf.start, pf.goal = start, goal
	pf.pool.begin(pf.g.Len())
	pf.open.Reset()
	pf.goals = pf.goals[:0]
	pf.goalSize = 0
	lists := pf.g.Components()
	pf.goalCount = resize(pf.goalCount, lists)
	pf.openCount = resize(pf.openCount, lists)
}

func resize(s []int32, n int) []int32 {
	if cap(s) < n {
		return make([]int32, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func (pf *PathFinder) comp(n *navgraph.NavNode) int {
	c := int(n.ListID)
	if c < 0 || c >= len(pf.goalCount) {
		return -1
	}
	return c
}

func (pf *PathFinder) seedGoals() int {
	p := pf.g.Params()
	it := pf.g.NodesNear(pf.goal, 2*p.MaxEdgeDistance)
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		c := pf.comp(n)
		if c < 0 || common.HeightDelta(n.Pos, pf.goal) > p.MaxHeight {
			continue
		}
		sn := pf.pool.touch(int32(n.Index()))
		sn.flags |= nodeGoal
		pf.goals = append(pf.goals, sn.node)
		pf.goalCount[c]++
		pf.goalSize++
	}
	return pf.goalSize
}

func bucketOf(from, to common.Vec3) int {
	a := common.Angle2D(from, to)
	b := int((a + math.Pi) / (2 * math.Pi) * seedBuckets)
	return common.Clamp(b, 0, seedBuckets-1)
}

// seedStarts opens up to eight start nodes, spreading them over angular
// buckets around the start point before accepting a second node in any
// bucket.
func (pf *PathFinder) seedStarts() int {
	p := pf.g.Params()
	pf.cands = pf.cands[:0]
	it := pf.g.NodesNear(pf.start, 2*p.MaxEdgeDistance)
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		c := pf.comp(n)
		if c < 0 || pf.goalCount[c] == 0 {
			continue
		}
		pf.cands = append(pf.cands, seedCandidate{
			node:   int32(n.Index()),
			dist:   common.Vdist(pf.start, n.Pos),
			bucket: bucketOf(pf.start, n.Pos),
		})
	}

	opened := 0
	for want := seedBuckets; want > 0 && opened < seedBuckets; want -= 2 {
		n := 0
		for b := seedBuckets - 1; b >= 0 && opened < seedBuckets; b-- {
			best := -1
			for i := range pf.cands {
				c := &pf.cands[i]
				if c.used || c.bucket != b {
					continue
				}
				if best < 0 || c.dist < pf.cands[best].dist {
					best = i
				}
			}
			if best < 0 {
				continue
			}
			pf.cands[best].used = true
			pf.openSeed(pf.cands[best])
			opened++
			n++
		}
		if n == 0 || opened >= want {
			break
		}
	}
	return opened
}

func (pf *PathFinder) openSeed(c seedCandidate) {
	n := pf.g.Node(int(c.node))
	sn := pf.pool.touch(c.node)
	sn.cost = c.dist
	sn.total = c.dist + common.Vdist(n.Pos, pf.goal)
	sn.parent = -1
	sn.flags |= nodeOpen | nodeNeedsRay
	pf.openCount[pf.comp(n)]++
	pf.open.Offer(sn)
}

// prune drops goals no open node can reach, then open nodes whose component
// holds no goal.
func (pf *PathFinder) prune() {
	for c := range pf.goalCount {
		if pf.goalCount[c] > 0 && pf.openCount[c] == 0 {
			pf.dropGoals(c)
		}
	}
	for c := range pf.openCount {
		if pf.openCount[c] > 0 && pf.goalCount[c] == 0 {
			pf.dropOpen(c)
		}
	}
}

func (pf *PathFinder) dropGoals(c int) {
	kept := pf.goals[:0]
	for _, i := range pf.goals {
		sn := pf.pool.peek(i)
		if sn == nil || !sn.has(nodeGoal) {
			continue
		}
		if int(pf.g.Node(int(i)).ListID) == c {
			sn.flags &^= nodeGoal
			continue
		}
		kept = append(kept, i)
	}
	pf.goals = kept
	pf.goalSize -= int(pf.goalCount[c])
	pf.goalCount[c] = 0
}

func (pf *PathFinder) dropOpen(c int) {
	pf.open.RemoveIf(func(sn *searchNode) bool {
		if int(pf.g.Node(int(sn.node)).ListID) != c {
			return false
		}
		sn.flags &^= nodeOpen
		return true
	})
	pf.openCount[c] = 0
}

func (pf *PathFinder) discard(sn *searchNode, c int) {
	sn.cost, sn.total = inf, inf
	sn.parent = -1
	pf.openCount[c]--
	if pf.openCount[c] == 0 {
		pf.prune()
	}
}

func (pf *PathFinder) leaveGoalSet(sn *searchNode, c int) {
	sn.flags &^= nodeGoal
	pf.goalCount[c]--
	pf.goalSize--
	if pf.goalCount[c] == 0 {
		pf.prune()
	}
}

func (pf *PathFinder) search() (*searchNode, string) {
	g := pf.g
	for !pf.open.Empty() && pf.goalSize > 0 {
		if pf.maxIter > 0 && pf.iter >= pf.maxIter {
			return nil, resultCapped
		}
		pf.iter++
		cur := pf.open.Poll()
		cur.flags &^= nodeOpen
		n := g.Node(int(cur.node))
		c := pf.comp(n)

		if cur.has(nodeNeedsRay) {
			cur.flags &^= nodeNeedsRay
			if !g.FreeLineOfSight(pf.start, n.Pos, navgraph.SkipMovable) {
				pf.discard(cur, c)
				continue
			}
		}

		if cur.has(nodeGoal) {
			if g.FreeLineOfSight(n.Pos, pf.goal, navgraph.SkipMovable) {
				return cur, resultFound
			}
			pf.leaveGoalSet(cur, c)
			if pf.goalSize == 0 {
				break
			}
		}

		pf.expand(cur, n)
	}
	return nil, resultNoPath
}

func (pf *PathFinder) expand(cur *searchNode, n *navgraph.NavNode) {
	for _, e := range n.Edges {
		m := e.To
		mc := pf.comp(m)
		if mc < 0 || pf.goalCount[mc] == 0 {
			continue
		}
		if pf.admit != nil && !pf.admit(n, e) {
			continue
		}
		cand := cur.cost + e.Distance*(1+common.HeightDelta(m.Pos, n.Pos))
		sn := pf.pool.touch(int32(m.Index()))
		if cand >= sn.cost {
			continue
		}
		if !sn.reached() {
			pf.openCount[mc]++
		}
		sn.cost = cand
		sn.total = cand + common.Vdist(m.Pos, pf.goal)
		sn.parent = cur.node
		sn.flags &^= nodeNeedsRay
		if pf.open.Contains(sn) {
			pf.open.Update(sn)
		} else {
			sn.flags |= nodeOpen
			pf.open.Offer(sn)
		}
	}
}
