package gnn

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// WeightsVersion is the only serialization version this build reads.
const WeightsVersion = 1

// weightsFile is the on-disk layout: an explicit versioned JSON export of
// the trained parameters, one entry per convolution in network order.
type weightsFile struct {
	Version int           `json:"version"`
	Layers  []layerParams `json:"layers"`
}

type layerParams struct {
	Root  [][]float64 `json:"root"`
	Neigh [][]float64 `json:"neigh"`
	Bias  []float64   `json:"bias"`
}

// Load reads trained weights from path into a new model.
//
// A missing file surfaces as an fs.ErrNotExist-wrapped error so callers can
// degrade to New() — per the service contract, absent weights are a silent
// degradation, not a startup failure. A present-but-invalid file is an error.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model weights: %w", err)
	}

	var wf weightsFile
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("parse model weights: %w", err)
	}
	if wf.Version != WeightsVersion {
		return nil, fmt.Errorf("model weights version %d not supported (want %d)", wf.Version, WeightsVersion)
	}
	if len(wf.Layers) != 2 {
		return nil, fmt.Errorf("model weights: expected 2 layers, got %d", len(wf.Layers))
	}

	conv1, err := wf.Layers[0].toLayer(HiddenDim, InputDim)
	if err != nil {
		return nil, fmt.Errorf("model weights layer 1: %w", err)
	}
	conv2, err := wf.Layers[1].toLayer(NumClasses, HiddenDim)
	if err != nil {
		return nil, fmt.Errorf("model weights layer 2: %w", err)
	}

	m := New()
	m.conv1 = conv1
	m.conv2 = conv2
	return m, nil
}

func (p *layerParams) toLayer(outDim, inDim int) (*sageLayer, error) {
	root, err := toDense(p.Root, outDim, inDim)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	neigh, err := toDense(p.Neigh, outDim, inDim)
	if err != nil {
		return nil, fmt.Errorf("neigh: %w", err)
	}
	if len(p.Bias) != outDim {
		return nil, fmt.Errorf("bias: expected length %d, got %d", outDim, len(p.Bias))
	}
	bias := make([]float64, outDim)
	copy(bias, p.Bias)

	return &sageLayer{root: root, neigh: neigh, bias: bias}, nil
}

func toDense(rows [][]float64, r, c int) (*mat.Dense, error) {
	if len(rows) != r {
		return nil, fmt.Errorf("expected %d rows, got %d", r, len(rows))
	}
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i, c, len(row))
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}
