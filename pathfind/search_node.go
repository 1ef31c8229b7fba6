package pathfind

import "math"

type nodeFlags uint8

const (
	nodeOpen     nodeFlags = 1 << iota
	nodeNeedsRay           // seeded from the start point, line of sight not yet verified
	nodeGoal
)

var inf = float32(math.Inf(1))

type searchNode struct {
	cost      float32 // accumulated cost from the start point
	total     float32 // cost plus estimate to the goal
	parent    int32   // -1 for seeds
	epoch     uint32
	flags     nodeFlags
	heapIndex int
	node      int32
}

func (n *searchNode) SetIndex(index int) { n.heapIndex = index }

func (n *searchNode) GetIndex() int { return n.heapIndex }

func (n *searchNode) reached() bool { return n.cost < inf }

func (n *searchNode) has(f nodeFlags) bool { return n.flags&f != 0 }

func searchLess(a, b *searchNode) bool {
	if a.total != b.total {
		return a.total < b.total
	}
	return a.node < b.node
}

// nodePool holds one searchNode per graph node. Entries from an older search
// are recognised by their epoch and reset on first touch.
type nodePool struct {
	nodes []searchNode
	epoch uint32
}

func (p *nodePool) begin(n int) {
	if len(p.nodes) < n {
		p.nodes = make([]searchNode, n)
		p.epoch = 0
	}
	p.epoch++
	if p.epoch == 0 {
		clear(p.nodes)
		p.epoch = 1
	}
}

func (p *nodePool) touch(i int32) *searchNode {
	n := &p.nodes[i]
	if n.epoch != p.epoch {
		*n = searchNode{
			cost:      inf,
			total:     inf,
			parent:    -1,
			epoch:     p.epoch,
			heapIndex: -1,
			node:      i,
		}
	}
	return n
}

// peek returns the entry only if it belongs to the current search.
func (p *nodePool) peek(i int32) *searchNode {
	n := &p.nodes[i]
	if n.epoch != p.epoch {
		return nil
	}
	return n
}
