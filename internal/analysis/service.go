package analysis

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/adekolu/walletguard/internal/encoder"
	"github.com/adekolu/walletguard/internal/features"
	"github.com/adekolu/walletguard/internal/freeze"
	"github.com/adekolu/walletguard/internal/idgen"
	"github.com/adekolu/walletguard/internal/metrics"
	"github.com/adekolu/walletguard/internal/traces"
	"github.com/adekolu/walletguard/internal/txsim"
)

// ErrEncoderUnavailable means the label encoder failed to load at startup;
// every analysis is refused until it is present.
var ErrEncoderUnavailable = errors.New("label encoder not loaded, model not ready")

// Classifier scores a feature vector. Implemented by gnn.Model.
type Classifier interface {
	Risk(v features.Vector) float64
}

// Service runs the analysis pipeline. All fields are set at construction and
// never mutated, so concurrent requests need no locking.
type Service struct {
	enc    *encoder.Encoder // nil when the encoder file was missing
	model  Classifier
	store  Store
	freeze *freeze.Dispatcher
	logger *slog.Logger
}

// NewService wires the pipeline. enc may be nil (degraded mode: every
// Analyze returns ErrEncoderUnavailable). store and dispatcher may be nil.
func NewService(enc *encoder.Encoder, model Classifier, store Store, d *freeze.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		enc:    enc,
		model:  model,
		store:  store,
		freeze: d,
		logger: logger,
	}
}

// Analyze scores one wallet for one monitored asset.
//
// The wallet must resolve to a node index in the training graph; otherwise
// inference never runs and encoder.ErrUnknownAddress is returned. The
// decision and the freeze trigger use the raw model probability; the score
// is rounded to 4 decimal places only for reporting.
func (s *Service) Analyze(ctx context.Context, address string, assetID uint64) (*Assessment, error) {
	ctx, span := traces.StartSpan(ctx, "analysis.Analyze",
		traces.Wallet(address),
		traces.AssetID(assetID),
	)
	defer span.End()

	if s.enc == nil {
		return nil, ErrEncoderUnavailable
	}
	if _, err := s.enc.Transform(address); err != nil {
		metrics.UnknownWalletsTotal.Inc()
		return nil, err
	}

	txns := txsim.Simulate(address)
	vec := features.Extract(txns, address)

	timer := prometheus.NewTimer(metrics.InferenceDuration)
	risk := s.model.Risk(vec)
	timer.ObserveDuration()

	decision := Decide(risk)
	rounded := math.Round(risk*10000) / 10000

	span.SetAttributes(traces.RiskScore(rounded), traces.Decision(string(decision)))
	metrics.RiskScores.Observe(rounded)
	metrics.AnalysesTotal.WithLabelValues(string(decision)).Inc()

	a := &Assessment{
		ID:          idgen.WithPrefix("asmt_"),
		Address:     address,
		AssetID:     assetID,
		RiskScore:   rounded,
		Decision:    decision,
		EvaluatedAt: time.Now(),
	}

	s.logger.Info("wallet analyzed",
		"wallet", address,
		"asset_id", assetID,
		"risk_score", rounded,
		"decision", decision,
		"txn_count", len(txns),
	)

	// Freeze is scheduled after the decision and never awaited.
	if decision == DecisionFraudHigh && s.freeze != nil {
		s.freeze.Dispatch(address, assetID)
	}

	// Persist asynchronously (best-effort audit trail)
	if s.store != nil {
		go func() {
			_ = s.store.Record(context.Background(), a)
		}()
	}

	return a, nil
}

// History lists recent assessments for a wallet, newest first.
func (s *Service) History(ctx context.Context, address string, limit int) ([]*Assessment, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListByAddress(ctx, address, limit)
}
