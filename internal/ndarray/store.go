// Package ndarray reads and writes params files: ordered key→tensor
// containers in the little-endian NDArray-list layout described in
// format.go. Entry order is preserved on round-trip, and entries that are
// not replaced round-trip byte-identical.
package ndarray

import (
	"fmt"

	"github.com/wzhen1996/BMXNet/internal/tensor"
)

// Store is an ordered mapping from key to tensor. Keys are unique; entry
// order is the file order and is preserved by Save.
type Store struct {
	keys    []string
	index   map[string]int
	tensors []*tensor.RawTensor
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.keys)
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (s *Store) Keys() []string {
	return s.keys
}

// Get returns the tensor for key, or false if the key is absent.
func (s *Store) Get(key string) (*tensor.RawTensor, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.tensors[i], true
}

// Set replaces the tensor for an existing key, keeping its position, or
// appends a new entry if the key is absent.
func (s *Store) Set(key string, t *tensor.RawTensor) {
	if i, ok := s.index[key]; ok {
		s.tensors[i] = t
		return
	}
	s.index[key] = len(s.keys)
	s.keys = append(s.keys, key)
	s.tensors = append(s.tensors, t)
}

// append adds a new entry, failing on duplicate keys. Used by Load.
func (s *Store) append(key string, t *tensor.RawTensor) error {
	if _, ok := s.index[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	s.index[key] = len(s.keys)
	s.keys = append(s.keys, key)
	s.tensors = append(s.tensors, t)
	return nil
}
