package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/distextil/telas_backend/docstore"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Handler wires the request surface to the core. Authentication, role
// checks and rate limiting happen in middleware before any of these run.
type Handler struct {
	Store  docstore.Store
	Logger *logrus.Logger
}

func New(store docstore.Store, logger *logrus.Logger) *Handler {
	return &Handler{Store: store, Logger: logger}
}

// currentPartition is computed once per request from wall-clock time and
// passed into the ledger, which never reads the clock itself.
func currentPartition() workflow.Partition {
	return workflow.PartitionFor(time.Now())
}

type editLineRequest struct {
	OldKey  models.LineKey       `json:"old_key" binding:"required"`
	NewLine models.InventoryLine `json:"new_line" binding:"required"`
}

func (h *Handler) EditLine(c *gin.Context) {
	var req editLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	result, err := workflow.EditLine(c.Request.Context(), h.Store, h.Logger, currentPartition(), req.OldKey, req.NewLine)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateCache(result.CacheHints)
	c.JSON(http.StatusOK, result)
}

type changeQuantityRequest struct {
	Key   models.LineKey  `json:"key" binding:"required"`
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

func (h *Handler) ChangeQuantity(c *gin.Context) {
	var req changeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	result, err := workflow.ChangeQuantity(c.Request.Context(), h.Store, h.Logger, currentPartition(), req.Key, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateCache(result.CacheHints)
	c.JSON(http.StatusOK, result)
}

type transferLineRequest struct {
	Key         models.LineKey   `json:"key" binding:"required"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	Destination models.Warehouse `json:"destination" binding:"required"`
}

func (h *Handler) TransferLine(c *gin.Context) {
	var req transferLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	result, err := workflow.TransferLine(c.Request.Context(), h.Store, h.Logger, currentPartition(), req.Key, req.Amount, req.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateCache(result.CacheHints)
	c.JSON(http.StatusOK, result)
}
