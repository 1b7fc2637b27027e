// Package analysis implements the wallet fraud-risk request path: simulate
// the wallet's transaction history, extract features, run the GNN classifier,
// and map the fraud probability to a discrete decision.
//
// Scores are the model's probability that the wallet belongs to the fraud
// class, in [0,1]. Decisions above the fraud threshold additionally schedule
// an asynchronous asset-freeze action.
package analysis

import (
	"context"
	"time"
)

// Decision is the discrete outcome of a wallet analysis.
type Decision string

const (
	DecisionClear            Decision = "CLEAR"
	DecisionSuspiciousReview Decision = "SUSPICIOUS_REVIEW"
	DecisionFraudHigh        Decision = "FRAUD_HIGH"
)

// Decision thresholds. Both boundaries are strict: a score of exactly
// FraudHighThreshold is SUSPICIOUS_REVIEW, exactly ReviewThreshold is CLEAR.
const (
	FraudHighThreshold = 0.85
	ReviewThreshold    = 0.60
)

// Decide maps a risk score to a decision.
func Decide(score float64) Decision {
	switch {
	case score > FraudHighThreshold:
		return DecisionFraudHigh
	case score > ReviewThreshold:
		return DecisionSuspiciousReview
	default:
		return DecisionClear
	}
}

// Assessment is the result of analyzing one wallet for one asset.
type Assessment struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	AssetID     uint64    `json:"assetId"`
	RiskScore   float64   `json:"riskScore"`
	Decision    Decision  `json:"decision"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Store persists assessments for audit trail.
type Store interface {
	Record(ctx context.Context, a *Assessment) error
	ListByAddress(ctx context.Context, address string, limit int) ([]*Assessment, error)
}
