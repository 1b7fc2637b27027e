package analysis

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adekolu/walletguard/internal/encoder"
	"github.com/adekolu/walletguard/internal/logging"
)

// Handler provides the HTTP endpoints for wallet analysis.
type Handler struct {
	svc *Service
}

// NewHandler creates an analysis handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up the audit routes on a router group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/wallets/:address/assessments", h.ListAssessments)
}

// AnalyzeRequest is the POST /analyze-wallet body. AssetID is a pointer so
// that a missing field is distinguishable from asset 0.
type AnalyzeRequest struct {
	WalletAddress string  `json:"wallet_address" binding:"required"`
	AssetID       *uint64 `json:"asset_id" binding:"required"`
}

// AnalyzeResponse mirrors the wire contract of the analyze endpoint.
type AnalyzeResponse struct {
	Address        string   `json:"address"`
	RiskScore      float64  `json:"risk_score"`
	Decision       Decision `json:"decision"`
	MonitoredAsset uint64   `json:"monitored_asset"`
}

// AnalyzeWallet handles POST /analyze-wallet.
func (h *Handler) AnalyzeWallet(c *gin.Context) {
	ctx := c.Request.Context()

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	// The identifier is opaque: whatever string the caller sent is the
	// encoder lookup key. Anything the training graph has not seen is a 404.
	addr := req.WalletAddress

	a, err := h.svc.Analyze(ctx, addr, *req.AssetID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEncoderUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "model_not_ready",
				"message": ErrEncoderUnavailable.Error(),
			})
		case errors.Is(err, encoder.ErrUnknownAddress):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "wallet_not_found",
				"message": encoder.ErrUnknownAddress.Error(),
			})
		default:
			logging.L(ctx).Error("wallet analysis failed", "wallet", addr, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Address:        a.Address,
		RiskScore:      a.RiskScore,
		Decision:       a.Decision,
		MonitoredAsset: a.AssetID,
	})
}

// ListAssessments handles GET /v1/wallets/:address/assessments.
func (h *Handler) ListAssessments(c *gin.Context) {
	addr := c.Param("address")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	assessments, err := h.svc.History(c.Request.Context(), addr, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list assessments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":     addr,
		"assessments": assessments,
		"count":       len(assessments),
	})
}
