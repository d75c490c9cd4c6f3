package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-collectibles/internal/aggregator"
	apierrors "github.com/feral-file/ff-collectibles/internal/api/errors"
	"github.com/feral-file/ff-collectibles/internal/api/middleware"
	"github.com/feral-file/ff-collectibles/internal/api/rest/dto"
	"github.com/feral-file/ff-collectibles/internal/domain"
	"github.com/feral-file/ff-collectibles/internal/logger"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// GetCollectibles resolves the collectibles of the requested wallets on every chain
	// GET /api/v1/collectibles?wallets=<address1>,<address2>&wallet=<address3>
	GetCollectibles(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	aggregator aggregator.Aggregator
	maxWallets int
}

// NewHandler creates a new REST API handler
func NewHandler(agg aggregator.Aggregator, maxWallets int) Handler {
	return &handler{
		aggregator: agg,
		maxWallets: maxWallets,
	}
}

// GetCollectibles resolves the collectibles of the requested wallets
func (h *handler) GetCollectibles(c *gin.Context) {
	queryParams, err := ParseGetCollectiblesQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	wallets := queryParams.Addresses()
	if len(wallets) == 0 {
		respondBadRequest(c, "At least one wallet is required")
		return
	}

	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	limit := h.maxWallets
	if caller, ok := middleware.CallerFrom(c); ok {
		limit = caller.WalletLimit(h.maxWallets)
	}
	if limit > 0 && len(wallets) > limit {
		respondTooManyWallets(c, limit)
		return
	}

	ctx := c.Request.Context()
	snapshot, err := h.aggregator.GetAllCollectibles(ctx, wallets)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPartialResult):
		logger.WarnCtx(ctx, "Returning partial collectibles", zap.Error(err))
	case errors.Is(err, context.DeadlineExceeded):
		respondTimeout(c, err)
		return
	case errors.Is(err, domain.ErrAllChainsFailed):
		logger.ErrorCtx(ctx, err, zap.Int("wallets", len(wallets)))
		c.JSON(http.StatusBadGateway, struct {
			Error *apierrors.APIError `json:"error"`
			dto.CollectiblesResponse
		}{
			Error:                apierrors.NewUpstreamError("Failed to retrieve collectibles from every chain"),
			CollectiblesResponse: dto.NewCollectiblesResponse(snapshot, err),
		})
		return
	default:
		respondInternalError(c, err, "Failed to retrieve collectibles", zap.Int("wallets", len(wallets)))
		return
	}

	c.JSON(http.StatusOK, dto.NewCollectiblesResponse(snapshot, err))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
