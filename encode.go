package surf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// Filter file format constants.
const (
	filterMagic   = "SRF1"
	filterVersion = 1
)

// Serialization errors.
var (
	ErrInvalidMagic    = errors.New("invalid filter magic")
	ErrVersionMismatch = errors.New("filter version mismatch")
)

// Marshal writes the filter to w: a magic and version header, the key and
// node counts, then the three bitmaps in order labels, has-child,
// is-prefix-key. Each bitmap is its bit-length followed by its 64-bit
// words; all integers are little-endian, bits within a word follow the
// top-down convention of the encoding.
func (f *Filter) Marshal(w io.Writer) error {
	if _, err := w.Write([]byte(filterMagic)); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(filterVersion)); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(f.numKeys)); err != nil {
		return fmt.Errorf("writing key count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(f.numNodes)); err != nil {
		return fmt.Errorf("writing node count: %w", err)
	}

	for _, bm := range []*Bitmap{f.labels, f.hasChild, f.isPrefixKey} {
		if err := marshalBitmap(w, bm); err != nil {
			return err
		}
	}

	return nil
}

// Unmarshal replaces the filter's contents with the encoding read from r.
func (f *Filter) Unmarshal(r io.Reader) error {
	magic := make([]byte, len(filterMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != filterMagic {
		return fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	if version != filterVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, version, filterVersion)
	}

	var numKeys, numNodes uint64
	if err := binary.Read(r, binary.LittleEndian, &numKeys); err != nil {
		return fmt.Errorf("reading key count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &numNodes); err != nil {
		return fmt.Errorf("reading node count: %w", err)
	}

	labels, err := unmarshalBitmap(r)
	if err != nil {
		return err
	}
	hasChild, err := unmarshalBitmap(r)
	if err != nil {
		return err
	}
	isPrefixKey, err := unmarshalBitmap(r)
	if err != nil {
		return err
	}

	f.labels = labels
	f.hasChild = hasChild
	f.isPrefixKey = isPrefixKey
	f.numKeys = int(numKeys)
	f.numNodes = int(numNodes)

	return nil
}

// Save atomically writes the filter to a file.
func (f *Filter) Save(path string) error {
	var buf bytes.Buffer
	if err := f.Marshal(&buf); err != nil {
		return err
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("writing filter file: %w", err)
	}

	return nil
}

// Load reads a filter from a file written by Save.
func Load(path string) (*Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening filter file: %w", err)
	}
	defer func() { _ = file.Close() }()

	filter := &Filter{}
	if err := filter.Unmarshal(file); err != nil {
		return nil, err
	}

	return filter, nil
}

func marshalBitmap(w io.Writer, bm *Bitmap) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(bm.Len())); err != nil {
		return fmt.Errorf("writing bitmap length: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, bm.Words()); err != nil {
		return fmt.Errorf("writing bitmap words: %w", err)
	}
	return nil
}

// unmarshalBitmap reads a bitmap back frozen: its capacity equals its
// length, so no query can grow it.
func unmarshalBitmap(r io.Reader) (*Bitmap, error) {
	var bits uint64
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return nil, fmt.Errorf("reading bitmap length: %w", err)
	}

	words := make([]uint64, bits/64)
	if err := binary.Read(r, binary.LittleEndian, words); err != nil {
		return nil, fmt.Errorf("reading bitmap words: %w", err)
	}

	return &Bitmap{
		capacity: int(bits),
		length:   int(bits),
		words:    words,
	}, nil
}
