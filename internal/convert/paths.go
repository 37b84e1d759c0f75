package convert

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OutputPrefix is prepended to the base name of every produced file.
const OutputPrefix = "binarized_"

// Paths holds the four file paths of one conversion, all derived from the
// input params path.
type Paths struct {
	ParamsIn  string
	ParamsOut string
	SymbolIn  string
	SymbolOut string
}

// DerivePaths derives the output and symbol paths for an input params
// file named `<dir>/<name>-<suffix>.<ext>`. The logical model name is the
// base name with its trailing `-<suffix>` segment stripped; the paired
// symbol file is `<dir>/<name>-symbol.json`, and outputs carry the
// OutputPrefix.
func DerivePaths(paramsPath string) (Paths, error) {
	dir := filepath.Dir(paramsPath)
	base := filepath.Base(paramsPath)

	cut := strings.LastIndex(base, "-")
	if cut <= 0 {
		return Paths{}, errors.Errorf(
			"params file name %q has no -<suffix> segment to derive the model name from", base)
	}
	logical := base[:cut]

	return Paths{
		ParamsIn:  paramsPath,
		ParamsOut: filepath.Join(dir, OutputPrefix+base),
		SymbolIn:  filepath.Join(dir, logical+"-symbol.json"),
		SymbolOut: filepath.Join(dir, OutputPrefix+logical+"-symbol.json"),
	}, nil
}
