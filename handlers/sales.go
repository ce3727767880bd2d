package handlers

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"bitbucket.org/distextil/telas_backend/workflow"
	"github.com/gin-gonic/gin"
)

type recordSaleRequest struct {
	Rolls  []models.SoldRoll `json:"rolls" binding:"required"`
	SoldBy string            `json:"sold_by" binding:"required"`
	Notes  string            `json:"notes"`
}

func (h *Handler) RecordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	result, err := workflow.RecordSale(c.Request.Context(), h.Store, h.Logger, time.Now(), req.Rolls, req.SoldBy, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateCache(result.CacheHints)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) QueryReturnable(c *gin.Context) {
	var filters workflow.ReturnableFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	cacheKey := fmt.Sprintf("soldrolls:%s:returnable:%s", workflow.PartitionFor(now).String(), c.Request.URL.RawQuery)
	var cached workflow.ReturnableResult
	if found, err := config.GetRedisObject(cacheKey, &cached); err == nil && found {
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := workflow.QueryReturnable(c.Request.Context(), h.Store, h.Logger, now, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := config.SetRedisObject(cacheKey, result, utils.GetCacheLifespan()); err != nil {
		config.LogError(h.Logger, "sales.go", "QueryReturnable", "SetRedisObject", cacheKey, err)
	}
	c.JSON(http.StatusOK, result)
}
