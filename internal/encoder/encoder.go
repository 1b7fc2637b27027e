// Package encoder maps wallet addresses to the integer node indices of the
// training graph. A wallet the encoder has never seen is not in the learned
// graph and must not be scored.
//
// The mapping ships as a versioned JSON file rather than a language-specific
// serialized object, so training and serving need not share a runtime.
package encoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FormatVersion is the only encoder file version this build reads.
const FormatVersion = 1

// ErrUnknownAddress means the address is absent from the training graph.
var ErrUnknownAddress = errors.New("wallet address not found in historical graph data")

// Encoder is an immutable address→index mapping, loaded once at startup and
// safe for concurrent reads.
type Encoder struct {
	indices map[string]int
}

type encoderFile struct {
	Version   int            `json:"version"`
	Addresses map[string]int `json:"addresses"`
}

// Load reads the encoder mapping from path. A missing file propagates the
// underlying fs.ErrNotExist so callers can run in degraded mode.
func Load(path string) (*Encoder, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoder: %w", err)
	}

	var ef encoderFile
	if err := json.Unmarshal(raw, &ef); err != nil {
		return nil, fmt.Errorf("parse encoder: %w", err)
	}
	if ef.Version != FormatVersion {
		return nil, fmt.Errorf("encoder version %d not supported (want %d)", ef.Version, FormatVersion)
	}
	if len(ef.Addresses) == 0 {
		return nil, errors.New("encoder: empty address mapping")
	}

	indices := make(map[string]int, len(ef.Addresses))
	for addr, idx := range ef.Addresses {
		indices[addr] = idx
	}
	return &Encoder{indices: indices}, nil
}

// FromMap builds an encoder directly from a mapping (test seam).
func FromMap(addresses map[string]int) *Encoder {
	indices := make(map[string]int, len(addresses))
	for addr, idx := range addresses {
		indices[addr] = idx
	}
	return &Encoder{indices: indices}
}

// Transform resolves an address to its graph index, or ErrUnknownAddress.
func (e *Encoder) Transform(address string) (int, error) {
	idx, ok := e.indices[address]
	if !ok {
		return 0, ErrUnknownAddress
	}
	return idx, nil
}

// Len reports how many addresses the encoder knows.
func (e *Encoder) Len() int {
	return len(e.indices)
}
