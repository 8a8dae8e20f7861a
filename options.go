package surf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Options errors.
var (
	ErrOptionsFileNotFound = errors.New("options file not found")
	ErrOptionsInvalid      = errors.New("invalid options")
)

// Options configures a filter build.
type Options struct {
	// DenseToSparseRatio governs where a full SuRF switches from the dense
	// to the sparse encoding. The dense-only filter carries it for
	// compatibility and does not act on it.
	DenseToSparseRatio int `json:"dense_to_sparse_ratio"`

	// HashBits is the number of hashed key suffix bits of the optional
	// suffix extension layer. Informational for the core encoding.
	HashBits int `json:"hash_bits"`

	// RealBits is the number of real key suffix bits of the optional
	// suffix extension layer. Informational for the core encoding.
	RealBits int `json:"real_bits"`

	// MemoryLimit bounds the encoded bitmaps, in bytes.
	MemoryLimit int `json:"memory_limit_bytes"`
}

// DefaultOptions returns the default configuration: ratio 64, four hash
// and real suffix bits, 256 MB memory limit.
func DefaultOptions() Options {
	return Options{
		DenseToSparseRatio: 64,
		HashBits:           4,
		RealBits:           4,
		MemoryLimit:        256_000_000,
	}
}

// LoadOptions reads options from a JSON file. The file may contain
// comments and trailing commas (JWCC); missing fields keep their defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, fmt.Errorf("%w: %s", ErrOptionsFileNotFound, path)
		}
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrOptionsInvalid, err)
	}

	opts := DefaultOptions()
	if err := json.Unmarshal(standardized, &opts); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrOptionsInvalid, err)
	}

	if err := opts.validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

func (o Options) validate() error {
	if o.MemoryLimit <= 0 {
		return fmt.Errorf("%w: memory_limit_bytes must be positive, got %d", ErrOptionsInvalid, o.MemoryLimit)
	}
	if o.DenseToSparseRatio <= 0 {
		return fmt.Errorf("%w: dense_to_sparse_ratio must be positive, got %d", ErrOptionsInvalid, o.DenseToSparseRatio)
	}
	if o.HashBits < 0 || o.RealBits < 0 {
		return fmt.Errorf("%w: suffix bits must not be negative", ErrOptionsInvalid)
	}
	return nil
}
