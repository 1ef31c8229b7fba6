package navgraph

import (
	"encoding/xml"
	"fmt"
)

type xmlCache struct {
	XMLName xml.Name `xml:"AINodes"`
	cacheDoc
}

func encodeXML(doc *cacheDoc) ([]byte, error) {
	out, err := xml.MarshalIndent(xmlCache{cacheDoc: *doc}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func decodeXML(data []byte) (*cacheDoc, error) {
	var c xmlCache
	if err := xml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCache, err)
	}
	return &c.cacheDoc, nil
}
