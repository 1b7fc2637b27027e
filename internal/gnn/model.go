// Package gnn implements the fraud classifier: a two-layer SAGE-style graph
// convolutional network over a fixed two-node inference graph.
//
// The architecture must match the training setup exactly for the exported
// weights to be usable: SAGEConv(5→16) → ReLU → dropout(0.5, training only)
// → SAGEConv(16→2) → log-softmax. Each SAGE layer computes
//
//	out = W_root·x + W_neigh·mean(neighbors) + bias
//
// with mean aggregation over incoming edges.
package gnn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/adekolu/walletguard/internal/features"
)

const (
	// InputDim is the per-node feature dimension.
	InputDim = features.Dim
	// HiddenDim is the width of the hidden graph-convolution layer.
	HiddenDim = 16
	// NumClasses is the output dimension: {legitimate, fraud}.
	NumClasses = 2
	// FraudClass is the output index whose probability is the risk score.
	FraudClass = 1

	// DropoutRate applies between the two convolutions, training mode only.
	DropoutRate = 0.5

	// defaultInitSeed makes the untrained fallback model deterministic, so a
	// process restarted without weight files keeps scoring consistently.
	defaultInitSeed = 7
)

// Edge is a directed source→target message-passing edge.
type Edge struct {
	Source int
	Target int
}

// sageLayer holds one graph convolution's parameters.
// root and neigh are (out × in); bias has length out.
type sageLayer struct {
	root  *mat.Dense
	neigh *mat.Dense
	bias  []float64
}

// apply computes root·x + neigh·agg + bias for every node row.
func (l *sageLayer) apply(x, agg *mat.Dense) *mat.Dense {
	n, _ := x.Dims()
	outDim, _ := l.root.Dims()

	var xr, xn mat.Dense
	xr.Mul(x, l.root.T())
	xn.Mul(agg, l.neigh.T())

	out := mat.NewDense(n, outDim, nil)
	out.Add(&xr, &xn)
	for i := 0; i < n; i++ {
		for j := 0; j < outDim; j++ {
			out.Set(i, j, out.At(i, j)+l.bias[j])
		}
	}
	return out
}

// Model is the two-layer classifier. Parameters are fixed after construction
// or weight loading; concurrent inference calls in eval mode are safe.
type Model struct {
	conv1    *sageLayer
	conv2    *sageLayer
	training bool
	rng      *rand.Rand
}

// New returns a model with deterministic untrained (Glorot-uniform) weights.
// Scores from an untrained model are arbitrary; callers that load no weight
// file should treat predictions as unreliable but the model stays usable.
func New() *Model {
	rng := rand.New(rand.NewSource(defaultInitSeed))
	return &Model{
		conv1: newSageLayer(rng, HiddenDim, InputDim),
		conv2: newSageLayer(rng, NumClasses, HiddenDim),
		rng:   rng,
	}
}

func newSageLayer(rng *rand.Rand, outDim, inDim int) *sageLayer {
	return &sageLayer{
		root:  glorot(rng, outDim, inDim),
		neigh: glorot(rng, outDim, inDim),
		bias:  make([]float64, outDim),
	}
}

func glorot(rng *rand.Rand, outDim, inDim int) *mat.Dense {
	bound := math.Sqrt(6.0 / float64(inDim+outDim))
	data := make([]float64, outDim*inDim)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return mat.NewDense(outDim, inDim, data)
}

// SetTraining toggles training mode. Dropout is active only while training;
// inference must run with training off.
func (m *Model) SetTraining(on bool) {
	m.training = on
}

// Forward runs the network over the node feature matrix x (n × InputDim)
// and edge list, returning per-node log-probabilities (n × NumClasses).
func (m *Model) Forward(x *mat.Dense, edges []Edge) *mat.Dense {
	n, _ := x.Dims()

	h := m.conv1.apply(x, meanAggregate(x, edges, n))
	relu(h)
	m.dropout(h)
	out := m.conv2.apply(h, meanAggregate(h, edges, n))
	logSoftmax(out)
	return out
}

// Risk scores a single wallet. The inference graph is intentionally
// degenerate: the subject at node 0, an all-zero placeholder neighbor at
// node 1, one symmetric edge pair. Only node 0's output is read; node 1
// exists because the trained weights expect a neighbor term.
func (m *Model) Risk(v features.Vector) float64 {
	x := mat.NewDense(2, InputDim, nil)
	for j, val := range v {
		x.Set(0, j, val)
	}

	edges := []Edge{{Source: 0, Target: 1}, {Source: 1, Target: 0}}
	logProbs := m.Forward(x, edges)
	return math.Exp(logProbs.At(0, FraudClass))
}

// meanAggregate builds the per-node mean of incoming neighbor features.
// Nodes with no incoming edges aggregate to zero.
func meanAggregate(x *mat.Dense, edges []Edge, n int) *mat.Dense {
	_, dim := x.Dims()
	agg := mat.NewDense(n, dim, nil)
	counts := make([]int, n)

	for _, e := range edges {
		for j := 0; j < dim; j++ {
			agg.Set(e.Target, j, agg.At(e.Target, j)+x.At(e.Source, j))
		}
		counts[e.Target]++
	}
	for i := 0; i < n; i++ {
		if counts[i] == 0 {
			continue
		}
		for j := 0; j < dim; j++ {
			agg.Set(i, j, agg.At(i, j)/float64(counts[i]))
		}
	}
	return agg
}

func relu(x *mat.Dense) {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if x.At(i, j) < 0 {
				x.Set(i, j, 0)
			}
		}
	}
}

// dropout zeroes each activation with probability DropoutRate and rescales
// the survivors. No-op outside training mode.
func (m *Model) dropout(x *mat.Dense) {
	if !m.training {
		return
	}
	r, c := x.Dims()
	scale := 1.0 / (1.0 - DropoutRate)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.rng.Float64() < DropoutRate {
				x.Set(i, j, 0)
			} else {
				x.Set(i, j, x.At(i, j)*scale)
			}
		}
	}
}

// logSoftmax normalizes each row in place, max-shifted for stability.
func logSoftmax(x *mat.Dense) {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		maxVal := x.At(i, 0)
		for j := 1; j < c; j++ {
			if x.At(i, j) > maxVal {
				maxVal = x.At(i, j)
			}
		}
		var sum float64
		for j := 0; j < c; j++ {
			sum += math.Exp(x.At(i, j) - maxVal)
		}
		logSum := math.Log(sum)
		for j := 0; j < c; j++ {
			x.Set(i, j, x.At(i, j)-maxVal-logSum)
		}
	}
}
