package navgraph

import (
	"github.com/gorustyt/gonavgraph/common"
)

// NavEdge is a directed connection validated by line of sight at compile time.
type NavEdge struct {
	To       *NavNode
	Distance float32 // euclidean distance between the two node positions
}

// NavNode is a stationary navigation point.
type NavNode struct {
	Name     string
	ID       int
	Pos      common.Vec3
	UserData any
	ListID   int32 // connectivity component, -1 until compiled or loaded
	Edges    []NavEdge

	index int
}

// Index is the position of the node in its graph's storage.
func (n *NavNode) Index() int { return n.index }

func (n *NavNode) EdgeTo(m *NavNode) (NavEdge, bool) {
	for _, e := range n.Edges {
		if e.To == m {
			return e, true
		}
	}
	return NavEdge{}, false
}

func (n *NavNode) HasEdgeTo(m *NavNode) bool {
	_, ok := n.EdgeTo(m)
	return ok
}
