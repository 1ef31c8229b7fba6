package navgraph

import (
	"math"

	"github.com/gorustyt/gonavgraph/common"
)

const minCellSize = 1e-3

// grid is a uniform index over the xz bounding rectangle of the nodes. It has
// one spare row and column so nodes on the max border still map to a cell.
type grid struct {
	minX, minZ   float32
	cellSizeX    float32
	cellSizeZ    float32
	invCellSizeX float32
	invCellSizeZ float32
	cols, rows   int
	cells        [][]int32
}

func newGrid(nodes []NavNode, nodesPerCell float32) *grid {
	g := &grid{}
	if len(nodes) == 0 {
		return g
	}
	if nodesPerCell <= 0 {
		nodesPerCell = 1
	}
	minX, minZ := nodes[0].Pos[0], nodes[0].Pos[2]
	maxX, maxZ := minX, minZ
	for i := range nodes {
		p := nodes[i].Pos
		minX = min(minX, p[0])
		minZ = min(minZ, p[2])
		maxX = max(maxX, p[0])
		maxZ = max(maxZ, p[2])
	}
	k := int(math.Sqrt(float64(float32(len(nodes))/nodesPerCell))) + 1

	g.minX, g.minZ = minX, minZ
	g.cellSizeX = max((maxX-minX)/float32(k), minCellSize)
	g.cellSizeZ = max((maxZ-minZ)/float32(k), minCellSize)
	g.invCellSizeX = 1 / g.cellSizeX
	g.invCellSizeZ = 1 / g.cellSizeZ
	g.cols, g.rows = k+1, k+1
	g.cells = make([][]int32, g.cols*g.rows)
	for i := range nodes {
		x, z := g.cellOf(nodes[i].Pos)
		c := z*g.cols + x
		g.cells[c] = append(g.cells[c], int32(i))
	}
	return g
}

func (g *grid) cellOf(p common.Vec3) (x, z int) {
	x = int(math.Floor(float64((p[0] - g.minX) * g.invCellSizeX)))
	z = int(math.Floor(float64((p[2] - g.minZ) * g.invCellSizeZ)))
	return common.Clamp(x, 0, g.cols-1), common.Clamp(z, 0, g.rows-1)
}

// cellRange returns the inclusive cell rectangle overlapped by the square of
// half size r around p. ok is false when the square misses the grid entirely.
func (g *grid) cellRange(p common.Vec3, r float32) (x0, z0, x1, z1 int, ok bool) {
	if len(g.cells) == 0 {
		return 0, 0, 0, 0, false
	}
	fx0 := math.Floor(float64((p[0] - r - g.minX) * g.invCellSizeX))
	fz0 := math.Floor(float64((p[2] - r - g.minZ) * g.invCellSizeZ))
	fx1 := math.Floor(float64((p[0] + r - g.minX) * g.invCellSizeX))
	fz1 := math.Floor(float64((p[2] + r - g.minZ) * g.invCellSizeZ))
	if fx1 < 0 || fz1 < 0 || fx0 > float64(g.cols-1) || fz0 > float64(g.rows-1) {
		return 0, 0, 0, 0, false
	}
	x0 = common.Clamp(int(fx0), 0, g.cols-1)
	z0 = common.Clamp(int(fz0), 0, g.rows-1)
	x1 = common.Clamp(int(fx1), 0, g.cols-1)
	z1 = common.Clamp(int(fz1), 0, g.rows-1)
	return x0, z0, x1, z1, true
}

func (g *grid) cell(x, z int) []int32 {
	return g.cells[z*g.cols+x]
}

func (g *grid) itemCountAt(x, z int) int {
	if x < 0 || z < 0 || x >= g.cols || z >= g.rows {
		return 0
	}
	return len(g.cell(x, z))
}

// NodeIterator walks the nodes near a point. It is finite and cannot be
// restarted.
type NodeIterator struct {
	g         *Graph
	center    common.Vec3
	radiusSqr float32

	x0, x1, z1 int
	x, z       int
	cell       []int32
	pos        int
	done       bool
}

// Next returns the next node within range, or false once the covered cells
// are exhausted.
func (it *NodeIterator) Next() (*NavNode, bool) {
	for !it.done {
		for it.pos < len(it.cell) {
			n := &it.g.nodes[it.cell[it.pos]]
			it.pos++
			if common.Vdist2DSqr(n.Pos, it.center) <= it.radiusSqr {
				return n, true
			}
		}
		it.advance()
	}
	return nil, false
}

func (it *NodeIterator) advance() {
	it.x++
	if it.x > it.x1 {
		it.x = it.x0
		it.z++
	}
	if it.z > it.z1 {
		it.done = true
		it.cell = nil
		return
	}
	it.cell = it.g.grid.cell(it.x, it.z)
	it.pos = 0
}

// Collect drains the iterator.
func (it *NodeIterator) Collect() []*NavNode {
	var res []*NavNode
	for n, ok := it.Next(); ok; n, ok = it.Next() {
		res = append(res, n)
	}
	return res
}
