package ndarray

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/wzhen1996/BMXNet/internal/tensor"
)

// Load reads a params file from disk.
//
//nolint:gosec // G304: path comes from the converter's command line, file inclusion is intentional.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close() // Ignore close error on read-only file.
	}()

	store, err := Read(f)
	if err != nil {
		return nil, &FormatError{Path: path, Index: -1, Details: "load params", Err: err}
	}
	return store, nil
}

// Read parses a params container from the given reader.
func Read(r io.Reader) (*Store, error) {
	p := &reader{r: r, order: binary.LittleEndian}
	return p.read()
}

type reader struct {
	r     io.Reader
	order binary.ByteOrder
}

func (p *reader) read() (*Store, error) {
	var magic, reserved uint64
	if err := binary.Read(p.r, p.order, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != ListMagic {
		return nil, fmt.Errorf("%w: 0x%X (expected 0x%X)", ErrInvalidMagic, magic, ListMagic)
	}
	if err := binary.Read(p.r, p.order, &reserved); err != nil {
		return nil, fmt.Errorf("read reserved field: %w", err)
	}

	var count uint64
	if err := binary.Read(p.r, p.order, &count); err != nil {
		return nil, fmt.Errorf("read ndarray count: %w", err)
	}
	if count > MaxTensors {
		return nil, fmt.Errorf("%w: %d ndarrays", ErrTooManyItems, count)
	}

	tensors := make([]*tensor.RawTensor, count)
	for i := uint64(0); i < count; i++ {
		t, err := p.readTensor()
		if err != nil {
			return nil, fmt.Errorf("read ndarray %d: %w", i, err)
		}
		tensors[i] = t
	}

	var keyCount uint64
	if err := binary.Read(p.r, p.order, &keyCount); err != nil {
		return nil, fmt.Errorf("read key count: %w", err)
	}
	if keyCount != count {
		return nil, fmt.Errorf("%w: %d keys for %d ndarrays", ErrCountMismatch, keyCount, count)
	}

	store := NewStore()
	for i := uint64(0); i < keyCount; i++ {
		key, err := p.readString()
		if err != nil {
			return nil, fmt.Errorf("read key %d: %w", i, err)
		}
		if err := store.append(key, tensors[i]); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (p *reader) readTensor() (*tensor.RawTensor, error) {
	var ndim uint32
	if err := binary.Read(p.r, p.order, &ndim); err != nil {
		return nil, fmt.Errorf("read ndim: %w", err)
	}
	if ndim > MaxRank {
		return nil, fmt.Errorf("%w: ndim %d", ErrTooManyItems, ndim)
	}

	shape := make(tensor.Shape, ndim)
	for i := range shape {
		var dim int64
		if err := binary.Read(p.r, p.order, &dim); err != nil {
			return nil, fmt.Errorf("read dim %d: %w", i, err)
		}
		shape[i] = int(dim)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	var devType, devID, flag int32
	if err := binary.Read(p.r, p.order, &devType); err != nil {
		return nil, fmt.Errorf("read device type: %w", err)
	}
	if err := binary.Read(p.r, p.order, &devID); err != nil {
		return nil, fmt.Errorf("read device id: %w", err)
	}
	if err := binary.Read(p.r, p.order, &flag); err != nil {
		return nil, fmt.Errorf("read dtype flag: %w", err)
	}

	dtype, ok := dtypeFromFlag(flag)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDType, flag)
	}

	t, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(p.r, t.Data()); err != nil {
		return nil, fmt.Errorf("read %d data bytes: %w", t.ByteSize(), err)
	}
	return t, nil
}

func (p *reader) readString() (string, error) {
	var length uint64
	if err := binary.Read(p.r, p.order, &length); err != nil {
		return "", fmt.Errorf("read length: %w", err)
	}
	if length > MaxNameLength {
		return "", fmt.Errorf("%w: key length %d", ErrTooManyItems, length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return "", fmt.Errorf("read %d bytes: %w", length, err)
	}
	return string(buf), nil
}
