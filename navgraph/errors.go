package navgraph

import "errors"

var (
	// ErrEmptyGraph is returned by Compile when no node was registered.
	ErrEmptyGraph = errors.New("navgraph: compile requires at least one registered node")
	// ErrCapacityExceeded is returned by Register once the reserved capacity is used up.
	// The node is not added.
	ErrCapacityExceeded = errors.New("navgraph: reserved node capacity exceeded")
	ErrAlreadyReserved  = errors.New("navgraph: reserve must be called before register")
	ErrDuplicateNode    = errors.New("navgraph: duplicate node name or id")
	ErrNotCompiled      = errors.New("navgraph: graph is not compiled")
	ErrBadCache         = errors.New("navgraph: malformed cache file")
)
