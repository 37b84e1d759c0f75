// Package symbol parses, annotates and re-serializes symbol files: the
// JSON graph descriptions paired with a params file. Only the documented
// attribute insertion is performed; every other field round-trips with
// its content verbatim.
package symbol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Structural errors in a symbol document.
var (
	ErrMalformedGraph = errors.New("symbol document has no top-level nodes array")
	ErrMalformedNode  = errors.New("malformed graph node")
)

// Node is one computation node of the graph. Op, Name and Attr mirror the
// node's "op", "name" and "attr" JSON fields; fields are the full raw
// field map used for round-tripping everything else (inputs, etc.).
type Node struct {
	Op   string
	Name string
	Attr map[string]string

	fields map[string]json.RawMessage
}

// Graph is the parsed symbol document: the node sequence plus all other
// top-level fields, preserved for round-trip.
type Graph struct {
	Nodes []*Node

	fields map[string]json.RawMessage
}

// Parse reads a symbol document. It fails with ErrMalformedGraph if the
// top-level "nodes" array is missing or not an array. Individual nodes
// are parsed leniently: a missing op, name or attr only becomes an error
// if annotation needs it.
func Parse(data []byte) (*Graph, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parse symbol document: %w", err)
	}

	rawNodes, ok := fields["nodes"]
	if !ok {
		return nil, ErrMalformedGraph
	}
	var nodeList []json.RawMessage
	if err := json.Unmarshal(rawNodes, &nodeList); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGraph, err)
	}

	g := &Graph{fields: fields, Nodes: make([]*Node, len(nodeList))}
	for i, raw := range nodeList {
		node, err := parseNode(raw)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		g.Nodes[i] = node
	}
	return g, nil
}

func parseNode(raw json.RawMessage) (*Node, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}

	node := &Node{fields: fields}
	// op and name are read leniently: a non-string value leaves the typed
	// field empty, so the node simply never matches a target kind.
	if rawOp, ok := fields["op"]; ok {
		_ = json.Unmarshal(rawOp, &node.Op)
	}
	if rawName, ok := fields["name"]; ok {
		_ = json.Unmarshal(rawName, &node.Name)
	}
	return node, nil
}

// HasAttr reports whether the node carries an "attr" mapping.
func (n *Node) HasAttr() bool {
	_, ok := n.fields["attr"]
	return ok
}

// attrMap decodes the node's "attr" field into a string map.
func (n *Node) attrMap() (map[string]string, error) {
	raw, ok := n.fields["attr"]
	if !ok {
		return nil, fmt.Errorf("%w: no attr mapping", ErrMalformedNode)
	}
	var attr map[string]string
	if err := json.Unmarshal(raw, &attr); err != nil {
		return nil, fmt.Errorf("%w: attr is not a string mapping: %v", ErrMalformedNode, err)
	}
	return attr, nil
}

// Marshal re-serializes the graph. Node order and all top-level fields
// are preserved; nodes the annotator touched carry their updated attr.
func (g *Graph) Marshal() ([]byte, error) {
	nodeList := make([]json.RawMessage, len(g.Nodes))
	for i, node := range g.Nodes {
		raw, err := json.Marshal(node.fields)
		if err != nil {
			return nil, fmt.Errorf("marshal node %d: %w", i, err)
		}
		nodeList[i] = raw
	}

	rawNodes, err := json.Marshal(nodeList)
	if err != nil {
		return nil, fmt.Errorf("marshal nodes: %w", err)
	}
	g.fields["nodes"] = rawNodes
	return json.Marshal(g.fields)
}
