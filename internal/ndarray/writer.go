package ndarray

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Save writes the store to path in the params layout. The file is written
// to a temporary name in the same directory and renamed into place, so a
// failed write never leaves a truncated params file behind.
func (s *Store) Save(path string) error {
	dir := filepath.Dir(path)
	//nolint:gosec // G304: destination comes from the converter's command line.
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := s.Write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &FormatError{Path: path, Index: -1, Details: "save params", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Write serializes the store to the given writer.
func (s *Store) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	order := binary.LittleEndian

	if err := binary.Write(bw, order, ListMagic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(bw, order, uint64(0)); err != nil {
		return fmt.Errorf("write reserved field: %w", err)
	}
	if err := binary.Write(bw, order, uint64(len(s.tensors))); err != nil {
		return fmt.Errorf("write ndarray count: %w", err)
	}

	for i, t := range s.tensors {
		shape := t.Shape()
		if err := binary.Write(bw, order, uint32(len(shape))); err != nil {
			return fmt.Errorf("write ndarray %d ndim: %w", i, err)
		}
		for _, dim := range shape {
			if err := binary.Write(bw, order, int64(dim)); err != nil {
				return fmt.Errorf("write ndarray %d dims: %w", i, err)
			}
		}
		if err := binary.Write(bw, order, DevTypeCPU); err != nil {
			return fmt.Errorf("write ndarray %d device type: %w", i, err)
		}
		if err := binary.Write(bw, order, int32(0)); err != nil {
			return fmt.Errorf("write ndarray %d device id: %w", i, err)
		}
		if err := binary.Write(bw, order, flagFromDType(t.DType())); err != nil {
			return fmt.Errorf("write ndarray %d dtype flag: %w", i, err)
		}
		if _, err := bw.Write(t.Data()); err != nil {
			return fmt.Errorf("write ndarray %d data: %w", i, err)
		}
	}

	if err := binary.Write(bw, order, uint64(len(s.keys))); err != nil {
		return fmt.Errorf("write key count: %w", err)
	}
	for i, key := range s.keys {
		if err := binary.Write(bw, order, uint64(len(key))); err != nil {
			return fmt.Errorf("write key %d length: %w", i, err)
		}
		if _, err := bw.WriteString(key); err != nil {
			return fmt.Errorf("write key %d: %w", i, err)
		}
	}
	return bw.Flush()
}
