package symbol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGraph = `{
  "nodes": [
    {"op": "null", "name": "data", "inputs": []},
    {"op": "null", "name": "conv1_qconvolution_weight", "inputs": []},
    {"op": "QConvolution", "name": "conv1_qconvolution",
     "attr": {"kernel": "(3, 3)", "num_filter": "64"}, "inputs": [[0, 0], [1, 0]]},
    {"op": "Activation", "name": "relu1", "attr": {"act_type": "relu"}, "inputs": [[2, 0]]},
    {"op": "QFullyConnected", "name": "fc1_qfullyconnected",
     "attr": {"num_hidden": "10"}, "inputs": [[3, 0]]}
  ],
  "arg_nodes": [0, 1],
  "heads": [[4, 0]],
  "attrs": {"mxnet_version": ["int", 10100]}
}`

func TestParseAndAnnotate(t *testing.T) {
	g, err := Parse([]byte(testGraph))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 5)

	annotated, err := g.Annotate(DefaultTargets())
	require.NoError(t, err)
	assert.Equal(t, []string{"conv1_qconvolution", "fc1_qfullyconnected"}, annotated)

	out, err := g.Marshal()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &doc))

	var nodes []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["nodes"], &nodes))
	require.Len(t, nodes, 5)

	var attr map[string]string
	require.NoError(t, json.Unmarshal(nodes[2]["attr"], &attr))
	assert.Equal(t, MarkerValue, attr[MarkerAttr])
	assert.Equal(t, "(3, 3)", attr["kernel"], "existing attributes survive annotation")

	// Untouched nodes keep their attributes.
	attr = nil
	require.NoError(t, json.Unmarshal(nodes[3]["attr"], &attr))
	assert.Equal(t, map[string]string{"act_type": "relu"}, attr)
}

func TestAnnotatePreservesOtherFields(t *testing.T) {
	g, err := Parse([]byte(testGraph))
	require.NoError(t, err)
	_, err = g.Annotate(DefaultTargets())
	require.NoError(t, err)

	out, err := g.Marshal()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.JSONEq(t, `[0, 1]`, string(doc["arg_nodes"]))
	assert.JSONEq(t, `[[4, 0]]`, string(doc["heads"]))
	assert.JSONEq(t, `{"mxnet_version": ["int", 10100]}`, string(doc["attrs"]))

	var nodes []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["nodes"], &nodes))
	assert.JSONEq(t, `[[0, 0], [1, 0]]`, string(nodes[2]["inputs"]), "node fields besides attr are untouched")
}

func TestAnnotateIsIdempotent(t *testing.T) {
	g, err := Parse([]byte(testGraph))
	require.NoError(t, err)
	_, err = g.Annotate(DefaultTargets())
	require.NoError(t, err)
	once, err := g.Marshal()
	require.NoError(t, err)

	g2, err := Parse(once)
	require.NoError(t, err)
	_, err = g2.Annotate(DefaultTargets())
	require.NoError(t, err)
	twice, err := g2.Marshal()
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
}

func TestAnnotateSingleNodeScenario(t *testing.T) {
	g, err := Parse([]byte(`{"nodes": [{"op": "QConvolution", "name": "conv1_qconvolution", "attr": {}}]}`))
	require.NoError(t, err)

	annotated, err := g.Annotate(DefaultTargets())
	require.NoError(t, err)
	assert.Equal(t, []string{"conv1_qconvolution"}, annotated)

	out, err := g.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"nodes": [{"op": "QConvolution", "name": "conv1_qconvolution", "attr": {"binarized_weights_only": "True"}}]}`,
		string(out))
}

func TestParseRejectsMissingNodes(t *testing.T) {
	_, err := Parse([]byte(`{"arg_nodes": []}`))
	require.ErrorIs(t, err, ErrMalformedGraph)

	_, err = Parse([]byte(`{"nodes": {"not": "an array"}}`))
	require.ErrorIs(t, err, ErrMalformedGraph)

	_, err = Parse([]byte(`not json`))
	require.Error(t, err)
}

func TestAnnotateRejectsMatchedNodeWithoutAttr(t *testing.T) {
	g, err := Parse([]byte(`{"nodes": [{"op": "QConvolution", "name": "conv1"}]}`))
	require.NoError(t, err)

	_, err = g.Annotate(DefaultTargets())
	require.ErrorIs(t, err, ErrMalformedNode)
}

func TestAnnotateRejectsMatchedNodeWithoutName(t *testing.T) {
	g, err := Parse([]byte(`{"nodes": [{"op": "QConvolution", "attr": {}}]}`))
	require.NoError(t, err)

	_, err = g.Annotate(DefaultTargets())
	require.ErrorIs(t, err, ErrMalformedNode)
}

func TestAnnotateMatchIsExactAndCaseSensitive(t *testing.T) {
	g, err := Parse([]byte(`{"nodes": [
		{"op": "qconvolution", "name": "lower", "attr": {}},
		{"op": "QConvolutionV2", "name": "versioned", "attr": {}}
	]}`))
	require.NoError(t, err)

	annotated, err := g.Annotate(DefaultTargets())
	require.NoError(t, err)
	assert.Empty(t, annotated)
}

func TestOpKindFromString(t *testing.T) {
	kind, ok := OpKindFromString("QConvolution")
	require.True(t, ok)
	assert.Equal(t, OpQConvolution, kind)

	_, ok = OpKindFromString("Convolution")
	assert.False(t, ok)
}
