// Package algorand wraps the Algorand indexer client used by the service.
//
// The only chain action in scope is the asset freeze triggered on FRAUD_HIGH
// decisions, and in this deployment it is simulated: the intent is logged
// with full detail but no AssetFreeze transaction is submitted. Submitting
// for real requires a funded freeze-manager account and an algod endpoint.
package algorand

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/indexer"
)

// Config holds chain client settings.
type Config struct {
	IndexerURL   string
	IndexerToken string
	Network      string // human-readable, e.g. "Algorand Testnet"
}

// Client is a read-only chain collaborator plus the simulated freezer.
type Client struct {
	indexer *indexer.Client
	network string
	logger  *slog.Logger
}

// New creates the indexer-backed client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	idx, err := indexer.MakeClient(cfg.IndexerURL, cfg.IndexerToken)
	if err != nil {
		return nil, fmt.Errorf("create indexer client: %w", err)
	}
	return &Client{
		indexer: idx,
		network: cfg.Network,
		logger:  logger,
	}, nil
}

// Network returns the human-readable network name.
func (c *Client) Network() string {
	return c.network
}

// Health pings the indexer.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.indexer.HealthCheck().Do(ctx); err != nil {
		return fmt.Errorf("indexer health: %w", err)
	}
	return nil
}

// FreezeAsset records the freeze intent. Simulated: logged, not submitted.
func (c *Client) FreezeAsset(ctx context.Context, wallet string, assetID uint64) error {
	c.logger.Warn("blockchain action: freezing asset (simulated)",
		"wallet", wallet,
		"asset_id", assetID,
		"network", c.network,
	)
	return nil
}
