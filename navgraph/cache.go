package navgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// cacheDoc is the codec independent content of a compiled graph cache.
type cacheDoc struct {
	ListNum int         `xml:"ListNum,attr"`
	Nodes   []cacheNode `xml:"Node"`
}

type cacheNode struct {
	Name   string      `xml:"Name,attr"`
	ID     int         `xml:"ID,attr"`
	ListID int32       `xml:"ListID,attr"`
	Edges  []cacheEdge `xml:"Edge"`
}

type cacheEdge struct {
	Node     string  `xml:"Node,attr"`
	Distance float32 `xml:"Distance,attr"`
}

const binaryCacheExt = ".bin"

func isBinaryCache(path string) bool {
	return strings.EqualFold(filepath.Ext(path), binaryCacheExt)
}

// SaveToFile writes the compiled edges and component ids. Files ending in
// .bin use the binary codec, anything else the XML one.
func (g *Graph) SaveToFile(path string) error {
	if !g.compiled {
		return ErrNotCompiled
	}
	var (
		data []byte
		err  error
	)
	doc := g.snapshot()
	if isBinaryCache(path) {
		data = encodeBinary(doc)
	} else {
		data, err = encodeXML(doc)
		if err != nil {
			return fmt.Errorf("navgraph: encode %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("navgraph: save %s: %w", path, err)
	}
	return nil
}

// LoadFromFile restores edges and component ids for the registered nodes and
// rebuilds the grid index. Edge recomputation is skipped. References that do
// not resolve are logged and dropped.
func (g *Graph) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("navgraph: load %s: %w", path, err)
	}
	var doc *cacheDoc
	if isBinaryCache(path) {
		doc, err = decodeBinary(data)
	} else {
		doc, err = decodeXML(data)
	}
	if err != nil {
		return fmt.Errorf("navgraph: load %s: %w", path, err)
	}
	return g.apply(doc, path)
}

func (g *Graph) snapshot() *cacheDoc {
	doc := &cacheDoc{ListNum: g.lists, Nodes: make([]cacheNode, 0, len(g.nodes))}
	for i := range g.nodes {
		n := &g.nodes[i]
		cn := cacheNode{Name: n.Name, ID: n.ID, ListID: n.ListID, Edges: make([]cacheEdge, 0, len(n.Edges))}
		for _, e := range n.Edges {
			cn.Edges = append(cn.Edges, cacheEdge{Node: e.To.Name, Distance: e.Distance})
		}
		doc.Nodes = append(doc.Nodes, cn)
	}
	return doc
}

func (g *Graph) apply(doc *cacheDoc, source string) error {
	if len(g.nodes) == 0 {
		return ErrEmptyGraph
	}
	log := g.logger.With(zap.String("cache", source))
	for i := range g.nodes {
		g.nodes[i].ListID = -1
		g.nodes[i].Edges = nil
	}
	// component ids index per-search tables, keep them within the node count
	g.lists = min(max(doc.ListNum, 0), len(g.nodes))

	for _, cn := range doc.Nodes {
		n := g.byName[cn.Name]
		if n == nil {
			n = g.byID[cn.ID]
		}
		if n == nil {
			log.Warn("navgraph: cached node not registered", zap.String("name", cn.Name), zap.Int("id", cn.ID))
			continue
		}
		if cn.ListID < 0 || int(cn.ListID) >= len(g.nodes) {
			log.Warn("navgraph: cached component id out of range, node isolated",
				zap.String("name", n.Name), zap.Int32("list", cn.ListID))
		} else {
			n.ListID = cn.ListID
		}
		if int(n.ListID) >= g.lists {
			g.lists = int(n.ListID) + 1
		}
		n.Edges = make([]NavEdge, 0, len(cn.Edges))
		for _, ce := range cn.Edges {
			to := g.byName[ce.Node]
			if to == nil {
				log.Warn("navgraph: cached edge target not registered", zap.String("from", n.Name), zap.String("to", ce.Node))
				continue
			}
			n.Edges = append(n.Edges, NavEdge{To: to, Distance: ce.Distance})
		}
	}

	for i := range g.nodes {
		n := &g.nodes[i]
		if n.ListID >= 0 {
			continue
		}
		n.ListID = int32(g.lists)
		g.lists++
		log.Warn("navgraph: node has no cached component, isolated", zap.String("name", n.Name), zap.Int32("list", n.ListID))
	}

	g.grid = newGrid(g.nodes, g.params.NodesPerCell)
	g.compiled = true
	log.Info("navgraph: cache loaded", zap.Int("nodes", len(g.nodes)), zap.Int("components", g.lists))
	return nil
}
