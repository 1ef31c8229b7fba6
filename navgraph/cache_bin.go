package navgraph

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Binary cache records, protobuf wire format:
//
//	cache: 1 version varint, 2 list_num varint, 3 node (repeated, bytes)
//	node:  1 name string, 2 id zigzag varint, 3 list_id zigzag varint, 4 edge (repeated, bytes)
//	edge:  1 node string, 2 distance fixed32
const binaryCacheVersion = 1

const (
	fieldCacheVersion protowire.Number = 1
	fieldCacheListNum protowire.Number = 2
	fieldCacheNode    protowire.Number = 3

	fieldNodeName   protowire.Number = 1
	fieldNodeID     protowire.Number = 2
	fieldNodeListID protowire.Number = 3
	fieldNodeEdge   protowire.Number = 4

	fieldEdgeNode     protowire.Number = 1
	fieldEdgeDistance protowire.Number = 2
)

func encodeBinary(doc *cacheDoc) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldCacheVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, binaryCacheVersion)
	b = protowire.AppendTag(b, fieldCacheListNum, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(doc.ListNum))
	var nb, eb []byte
	for _, n := range doc.Nodes {
		nb = nb[:0]
		nb = protowire.AppendTag(nb, fieldNodeName, protowire.BytesType)
		nb = protowire.AppendString(nb, n.Name)
		nb = protowire.AppendTag(nb, fieldNodeID, protowire.VarintType)
		nb = protowire.AppendVarint(nb, protowire.EncodeZigZag(int64(n.ID)))
		nb = protowire.AppendTag(nb, fieldNodeListID, protowire.VarintType)
		nb = protowire.AppendVarint(nb, protowire.EncodeZigZag(int64(n.ListID)))
		for _, e := range n.Edges {
			eb = eb[:0]
			eb = protowire.AppendTag(eb, fieldEdgeNode, protowire.BytesType)
			eb = protowire.AppendString(eb, e.Node)
			eb = protowire.AppendTag(eb, fieldEdgeDistance, protowire.Fixed32Type)
			eb = protowire.AppendFixed32(eb, math.Float32bits(e.Distance))
			nb = protowire.AppendTag(nb, fieldNodeEdge, protowire.BytesType)
			nb = protowire.AppendBytes(nb, eb)
		}
		b = protowire.AppendTag(b, fieldCacheNode, protowire.BytesType)
		b = protowire.AppendBytes(b, nb)
	}
	return b
}

// fieldFunc consumes the value of one field and returns the bytes read, or a
// negative protowire error code.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) int

func walkFields(b []byte, f fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrBadCache, protowire.ParseError(n))
		}
		b = b[n:]
		m := f(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrBadCache, num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func decodeBinary(data []byte) (*cacheDoc, error) {
	doc := &cacheDoc{}
	version := uint64(0)
	var inner error
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == fieldCacheVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			version = v
			return n
		case num == fieldCacheListNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			doc.ListNum = int(v)
			return n
		case num == fieldCacheNode && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n
			}
			cn, err := decodeBinaryNode(v)
			if err != nil {
				inner = err
				return len(b)
			}
			doc.Nodes = append(doc.Nodes, cn)
			return n
		}
		return 0
	})
	if err == nil {
		err = inner
	}
	if err != nil {
		return nil, err
	}
	if version != binaryCacheVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadCache, version)
	}
	return doc, nil
}

func decodeBinaryNode(data []byte) (cacheNode, error) {
	var cn cacheNode
	var inner error
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == fieldNodeName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			cn.Name = v
			return n
		case num == fieldNodeID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			cn.ID = int(protowire.DecodeZigZag(v))
			return n
		case num == fieldNodeListID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			cn.ListID = int32(protowire.DecodeZigZag(v))
			return n
		case num == fieldNodeEdge && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n
			}
			e, err := decodeBinaryEdge(v)
			if err != nil {
				inner = err
				return len(b)
			}
			cn.Edges = append(cn.Edges, e)
			return n
		}
		return 0
	})
	if err == nil {
		err = inner
	}
	return cn, err
}

func decodeBinaryEdge(data []byte) (cacheEdge, error) {
	var e cacheEdge
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == fieldEdgeNode && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			e.Node = v
			return n
		case num == fieldEdgeDistance && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			e.Distance = math.Float32frombits(v)
			return n
		}
		return 0
	})
	return e, err
}
