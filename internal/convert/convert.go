// Package convert sequences the two stages of a model conversion: weight
// binarization over the params file, then marker annotation over the
// paired symbol file. The pipeline takes an immutable Config and fails on
// the first error; it never deletes output a completed stage has written.
package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/wzhen1996/BMXNet/internal/binarize"
	"github.com/wzhen1996/BMXNet/internal/ndarray"
	"github.com/wzhen1996/BMXNet/internal/symbol"
)

// Pipeline errors.
var (
	ErrInputNotFound     = errors.New("input file not found")
	ErrInconsistentModel = errors.New("binarized weights and annotated graph nodes disagree")
)

// Config is the immutable configuration of one conversion run.
type Config struct {
	// ParamsPath is the input params file; all other paths derive from it.
	ParamsPath string
	// Bits is the packed word width. Zero means Width32.
	Bits binarize.WordBits
	// Targets are the operator kinds to annotate. Nil means DefaultTargets.
	Targets []symbol.OpKind
	// TargetLayers are the layer-name substrings whose weights get
	// binarized. Nil means binarize.DefaultTargetLayers.
	TargetLayers []string
}

// Run executes the conversion. Stage 1 binarizes the params file and
// writes the prefixed output; stage 2 runs only if stage 1 succeeded,
// annotates the paired symbol file and writes its prefixed output. A
// stage 2 failure leaves stage 1's output on disk.
func Run(cfg Config) error {
	bits := cfg.Bits
	if bits == 0 {
		bits = binarize.Width32
	}
	if !bits.Valid() {
		return errors.Errorf("unsupported word width %d (want 32 or 64)", bits)
	}
	targets := cfg.Targets
	if targets == nil {
		targets = symbol.DefaultTargets()
	}
	targetLayers := cfg.TargetLayers
	if targetLayers == nil {
		targetLayers = binarize.DefaultTargetLayers
	}

	paths, err := DerivePaths(cfg.ParamsPath)
	if err != nil {
		return err
	}

	converted, err := convertParams(paths, targetLayers, bits)
	if err != nil {
		return errors.Wrapf(err, "convert params %s", paths.ParamsIn)
	}

	if err := convertSymbol(paths, targets, converted); err != nil {
		return errors.Wrapf(err, "convert symbol %s", paths.SymbolIn)
	}
	return nil
}

// convertParams is stage 1: load, binarize, save. Returns the binarized
// keys for the cross-check in stage 2.
func convertParams(paths Paths, targetLayers []string, bits binarize.WordBits) ([]string, error) {
	klog.Infof("loading %s...", paths.ParamsIn)
	store, err := ndarray.Load(paths.ParamsIn)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrInputNotFound, paths.ParamsIn)
		}
		return nil, err
	}

	converted, err := binarize.ConvertStore(store, targetLayers, bits)
	if err != nil {
		return nil, err
	}
	for _, key := range converted {
		t, _ := store.Get(key)
		klog.Infof("|- converted weights %s (%s packed)", key, humanize.Bytes(uint64(t.ByteSize())))
	}

	if err := store.Save(paths.ParamsOut); err != nil {
		return nil, err
	}
	klog.Infof("wrote converted params to %s", paths.ParamsOut)
	return converted, nil
}

// convertSymbol is stage 2: read, annotate, cross-check, write.
func convertSymbol(paths Paths, targets []symbol.OpKind, converted []string) error {
	klog.Infof("loading %s...", paths.SymbolIn)
	data, err := os.ReadFile(paths.SymbolIn)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrInputNotFound, paths.SymbolIn)
		}
		return err
	}

	graph, err := symbol.Parse(data)
	if err != nil {
		return err
	}
	annotated, err := graph.Annotate(targets)
	if err != nil {
		return err
	}
	for _, name := range annotated {
		klog.Infof("|- adjusted attributes for %s", name)
	}

	if err := checkConsistent(converted, annotated); err != nil {
		return err
	}

	out, err := graph.Marshal()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(paths.SymbolOut, out); err != nil {
		return err
	}
	klog.Infof("wrote converted symbol to %s", paths.SymbolOut)
	return nil
}

// checkConsistent verifies that the binarized weight keys and the
// annotated node names describe the same set of layers: every key
// `<node>_weight` must have an annotated node `<node>` and vice versa.
// Neither side is authoritative; any asymmetric difference is an error.
func checkConsistent(convertedKeys, annotatedNodes []string) error {
	fromStore := make(map[string]bool, len(convertedKeys))
	for _, key := range convertedKeys {
		fromStore[weightNodeName(key)] = false
	}

	var extra []string
	for _, name := range annotatedNodes {
		if _, ok := fromStore[name]; ok {
			fromStore[name] = true
		} else {
			extra = append(extra, name)
		}
	}
	var missing []string
	for _, key := range convertedKeys {
		if !fromStore[weightNodeName(key)] {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return errors.Wrapf(ErrInconsistentModel,
			"binarized weights with no annotated graph node: %s", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		return errors.Wrapf(ErrInconsistentModel,
			"annotated graph nodes with no binarized weights: %s", strings.Join(extra, ", "))
	}
	return nil
}

// weightNodeName derives a graph node name from a weight key by stripping
// the trailing weight suffix.
func weightNodeName(key string) string {
	return strings.TrimSuffix(key, "_weight")
}

// writeFileAtomic writes data to a temporary file in path's directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "rename into place")
	}
	return nil
}
