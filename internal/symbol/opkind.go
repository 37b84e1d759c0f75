package symbol

// OpKind is an operator kind whose weight input can be pre-packed.
//
// Matching against graph nodes is by exact, case-sensitive string
// comparison; the closed set below is the whole matching rule.
type OpKind string

// Operator kinds with binarizable weights.
const (
	OpQConvolution    OpKind = "QConvolution"
	OpQFullyConnected OpKind = "QFullyConnected"
)

// DefaultTargets returns the operator kinds annotated by default.
func DefaultTargets() []OpKind {
	return []OpKind{OpQConvolution, OpQFullyConnected}
}

// OpKindFromString returns the OpKind for s, or false if s is not a
// supported operator kind.
func OpKindFromString(s string) (OpKind, bool) {
	switch OpKind(s) {
	case OpQConvolution:
		return OpQConvolution, true
	case OpQFullyConnected:
		return OpQFullyConnected, true
	default:
		return "", false
	}
}
