package navgraph

import (
	"fmt"
	"sort"

	"github.com/gorustyt/gonavgraph/common"
	"go.uber.org/zap"
)

// Params control edge synthesis.
type Params struct {
	MaxEdges        int     // edges kept per node
	MinEdges        int     // edges kept per node even when longer than MaxEdgeDistance
	MaxEdgeDistance float32 // preferred maximum edge length
	MaxHeight       float32 // maximum height delta between connected nodes
	NodesPerCell    float32 // target average node count per grid cell
}

func DefaultParams() Params {
	return Params{
		MaxEdges:        8,
		MinEdges:        2,
		MaxEdgeDistance: 10,
		MaxHeight:       2,
		NodesPerCell:    4,
	}
}

type Option func(g *Graph)

func WithParams(p Params) Option { return func(g *Graph) { g.params = p } }

func WithProfile(p Profile) Option { return func(g *Graph) { g.profile = p } }

func WithRayCaster(rc RayCaster) Option { return func(g *Graph) { g.caster = rc } }

func WithHitDecider(d HitDecider) Option { return func(g *Graph) { g.decide = d } }

func WithLogger(l *zap.Logger) Option { return func(g *Graph) { g.logger = l } }

// Graph owns the navigation nodes, the spatial index and the compiled edges.
// It is read-only once compiled or loaded.
type Graph struct {
	nodes    []NavNode
	byName   map[string]*NavNode
	byID     map[int]*NavNode
	grid     *grid
	params   Params
	profile  Profile
	caster   RayCaster
	decide   HitDecider
	los      *Clearance
	lists    int
	compiled bool
	logger   *zap.Logger
}

func New(opts ...Option) *Graph {
	g := &Graph{
		params:  DefaultParams(),
		profile: DefaultProfile(),
		byName:  map[string]*NavNode{},
		byID:    map[int]*NavNode{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = zap.L()
	}
	g.los = NewClearance(g.caster, g.profile, g.logger)
	g.los.SetHitDecider(g.decide)
	return g
}

// Reserve allocates storage for exactly n nodes. It must precede Register.
func (g *Graph) Reserve(n int) error {
	if len(g.nodes) > 0 {
		return ErrAlreadyReserved
	}
	if n < 0 {
		n = 0
	}
	g.nodes = make([]NavNode, 0, n)
	g.byName = make(map[string]*NavNode, n)
	g.byID = make(map[int]*NavNode, n)
	return nil
}

// Register appends a node. Once the reserved capacity is used up the call
// adds nothing and returns ErrCapacityExceeded.
func (g *Graph) Register(name string, id int, pos common.Vec3, userData any) (*NavNode, error) {
	if len(g.nodes) == cap(g.nodes) {
		g.logger.Warn("navgraph: register beyond reserved capacity",
			zap.String("name", name), zap.Int("id", id), zap.Int("capacity", cap(g.nodes)))
		return nil, ErrCapacityExceeded
	}
	if _, ok := g.byName[name]; ok {
		return nil, fmt.Errorf("%w: name %q", ErrDuplicateNode, name)
	}
	if _, ok := g.byID[id]; ok {
		return nil, fmt.Errorf("%w: id %d", ErrDuplicateNode, id)
	}
	// capacity is fixed, so appending never moves earlier nodes
	g.nodes = append(g.nodes, NavNode{
		Name:     name,
		ID:       id,
		Pos:      pos,
		UserData: userData,
		ListID:   -1,
		index:    len(g.nodes),
	})
	n := &g.nodes[len(g.nodes)-1]
	g.byName[name] = n
	g.byID[id] = n
	return n, nil
}

func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) Cap() int { return cap(g.nodes) }

func (g *Graph) Node(i int) *NavNode { return &g.nodes[i] }

func (g *Graph) NodeByName(name string) *NavNode { return g.byName[name] }

func (g *Graph) NodeByID(id int) *NavNode { return g.byID[id] }

// Components is the number of connectivity components.
func (g *Graph) Components() int { return g.lists }

func (g *Graph) Params() Params { return g.params }

func (g *Graph) Profile() Profile { return g.profile }

func (g *Graph) Compiled() bool { return g.compiled }

// Compile builds the grid, synthesizes edges and assigns connectivity ids.
func (g *Graph) Compile() error {
	if len(g.nodes) == 0 {
		return ErrEmptyGraph
	}
	g.grid = newGrid(g.nodes, g.params.NodesPerCell)

	edges := 0
	for i := range g.nodes {
		g.buildEdges(&g.nodes[i])
		edges += len(g.nodes[i].Edges)
	}
	g.assignComponents()
	g.compiled = true

	g.logger.Info("navgraph: compiled",
		zap.Int("nodes", len(g.nodes)),
		zap.Int("edges", edges),
		zap.Int("components", g.lists),
		zap.Int("cells", len(g.grid.cells)))
	return nil
}

func (g *Graph) buildEdges(n *NavNode) {
	p := g.params
	n.Edges = n.Edges[:0]
	it := g.NodesNear(n.Pos, p.MaxEdgeDistance*1.5)
	for m, ok := it.Next(); ok; m, ok = it.Next() {
		if m == n {
			continue
		}
		if common.HeightDelta(n.Pos, m.Pos) > p.MaxHeight {
			continue
		}
		d := common.Vdist(n.Pos, m.Pos)
		if d > p.MaxEdgeDistance*2 {
			continue
		}
		if !g.FreeLineOfSight(n.Pos, m.Pos, SkipMovable) {
			continue
		}
		n.Edges = append(n.Edges, NavEdge{To: m, Distance: d})
	}

	sort.SliceStable(n.Edges, func(i, j int) bool {
		if n.Edges[i].Distance != n.Edges[j].Distance {
			return n.Edges[i].Distance < n.Edges[j].Distance
		}
		return n.Edges[i].To.index < n.Edges[j].To.index
	})
	keep := min(len(n.Edges), p.MaxEdges)
	for i := max(p.MinEdges, 0); i < keep; i++ {
		if n.Edges[i].Distance > p.MaxEdgeDistance {
			keep = i
			break
		}
	}
	n.Edges = n.Edges[:keep]
}

// assignComponents flood fills along outgoing edges only, so the ids follow
// directed reachability from each root.
func (g *Graph) assignComponents() {
	for i := range g.nodes {
		g.nodes[i].ListID = -1
	}
	g.lists = 0
	var stack []*NavNode
	for i := range g.nodes {
		if g.nodes[i].ListID >= 0 {
			continue
		}
		id := int32(g.lists)
		g.lists++
		g.nodes[i].ListID = id
		stack = append(stack[:0], &g.nodes[i])
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range n.Edges {
				if e.To.ListID < 0 {
					e.To.ListID = id
					stack = append(stack, e.To)
				}
			}
		}
	}
}

// FreeLineOfSight runs the clearance check between two points with the
// graph's agent profile.
func (g *Graph) FreeLineOfSight(start, end common.Vec3, skip SkipFlags) bool {
	return g.los.Check(start, end, g.profile.Rays, skip)
}

// NodesNear iterates the nodes within radius of pos on the xz-plane. The
// iterator is empty until the graph is compiled or loaded.
func (g *Graph) NodesNear(pos common.Vec3, radius float32) *NodeIterator {
	it := &NodeIterator{g: g, center: pos, radiusSqr: radius * radius, done: true}
	if g.grid == nil || radius < 0 {
		return it
	}
	x0, z0, x1, z1, ok := g.grid.cellRange(pos, radius)
	if !ok {
		return it
	}
	it.x0, it.x1, it.z1 = x0, x1, z1
	it.x, it.z = x0, z0
	it.cell = g.grid.cell(x0, z0)
	it.done = false
	return it
}
