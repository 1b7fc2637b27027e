// Package features converts a wallet's transaction history into the fixed
// 5-dimensional input vector the classifier was trained on.
package features

import "github.com/adekolu/walletguard/internal/txsim"

// Dim is the model input dimension.
const Dim = 5

// Vector indices, in training order.
const (
	InDegree = iota
	OutDegree
	AvgOutgoing
	StructuringScore
	AccountAge
)

// AccountAgeDays is a placeholder: the training pipeline never computed a
// real account age, so inference must feed the same constant.
const AccountAgeDays = 30

// Structuring heuristic: flags many-small-outbound-transfer patterns.
// Hand-authored, not learned.
const (
	structuringHigh      = 0.8
	structuringLow       = 0.1
	structuringAvgCutoff = 500
)

// Vector is an ordered feature tuple:
// [in_degree, out_degree, avg_outgoing, structuring_score, account_age].
type Vector [Dim]float64

// Extract computes the feature vector for address from its transaction list.
func Extract(txns []txsim.Transaction, address string) Vector {
	var inDeg, outDeg int
	var totalOut int64

	for _, t := range txns {
		if t.Receiver == address {
			inDeg++
		}
		if t.Sender == address {
			outDeg++
			totalOut += t.Amount
		}
	}

	var avgOut float64
	if outDeg > 0 {
		avgOut = float64(totalOut) / float64(outDeg)
	}

	structuring := structuringLow
	if outDeg > 0 && avgOut < structuringAvgCutoff {
		structuring = structuringHigh
	}

	return Vector{
		InDegree:         float64(inDeg),
		OutDegree:        float64(outDeg),
		AvgOutgoing:      avgOut,
		StructuringScore: structuring,
		AccountAge:       AccountAgeDays,
	}
}
