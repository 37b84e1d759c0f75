package symbol

import (
	"encoding/json"
	"fmt"
)

// Marker attribute attached to annotated nodes. Its presence tells the
// execution engine that the node's weight input is already sign-packed
// and the runtime binarization step must be skipped.
const (
	MarkerAttr  = "binarized_weights_only"
	MarkerValue = "True"
)

// Annotate adds the marker attribute to every node whose operator kind is
// in targets, in sequence order, and returns the names of the annotated
// nodes. A matched node must have a name and an existing attr mapping;
// otherwise annotation fails with ErrMalformedNode. An already-present
// marker is overwritten, so annotating twice yields the same graph.
func (g *Graph) Annotate(targets []OpKind) ([]string, error) {
	targetSet := make(map[OpKind]struct{}, len(targets))
	for _, kind := range targets {
		targetSet[kind] = struct{}{}
	}

	var annotated []string
	for i, node := range g.Nodes {
		if _, ok := targetSet[OpKind(node.Op)]; !ok {
			continue
		}
		if node.Name == "" {
			return nil, fmt.Errorf("node %d (op %s): %w: no name", i, node.Op, ErrMalformedNode)
		}

		attr, err := node.attrMap()
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, node.Name, err)
		}
		attr[MarkerAttr] = MarkerValue

		raw, err := json.Marshal(attr)
		if err != nil {
			return nil, fmt.Errorf("node %d (%s): marshal attr: %w", i, node.Name, err)
		}
		node.fields["attr"] = raw
		node.Attr = attr
		annotated = append(annotated, node.Name)
	}
	return annotated, nil
}
