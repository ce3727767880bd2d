package handlers

import (
	"net/http"
	"time"

	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/workflow"
	"github.com/gin-gonic/gin"
)

type transferRollsRequest struct {
	FabricType  string           `json:"fabric_type" binding:"required"`
	Color       string           `json:"color" binding:"required"`
	Lot         int              `json:"lot"`
	RollNumbers []int            `json:"roll_numbers" binding:"required"`
	From        models.Warehouse `json:"from"`
	To          models.Warehouse `json:"to"`
}

func (h *Handler) TransferRolls(c *gin.Context) {
	var req transferRollsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	result, err := workflow.TransferRolls(c.Request.Context(), h.Store, h.Logger, time.Now(), req.FabricType, req.Color, req.Lot, req.RollNumbers, req.From, req.To)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateCache(result.CacheHints)
	c.JSON(http.StatusOK, result)
}

type processReturnsRequest struct {
	Rolls  []models.ReturnedRoll `json:"rolls" binding:"required"`
	Reason string                `json:"reason" binding:"required"`
	Notes  string                `json:"notes"`
}

func (h *Handler) ProcessReturns(c *gin.Context) {
	var req processReturnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.ProcessReturns(c.Request.Context(), h.Store, h.Logger, currentPartition(), req.Rolls, req.Reason, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateCache(outcome.CacheHints)
	c.JSON(http.StatusOK, outcome)
}
