package handlers

import (
	"net/http"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps the workflow error taxonomy onto HTTP statuses. Every
// failure carries enough structured context for an operator to locate the
// underlying document by hand.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *utils.ValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Error(), "field": e.Field})
	case *utils.NotFoundError:
		c.JSON(http.StatusNotFound, gin.H{
			"error":         e.Error(),
			"search_key":    e.SearchKey,
			"files_scanned": e.FilesScanned,
		})
	case *utils.InsufficientQuantityError:
		c.JSON(http.StatusConflict, gin.H{
			"error":     e.Error(),
			"available": e.Available,
			"requested": e.Requested,
		})
	case *utils.RollMismatchError:
		c.JSON(http.StatusConflict, gin.H{
			"error":           e.Error(),
			"offending_rolls": e.OffendingRolls,
		})
	case *utils.PersistError:
		c.JSON(http.StatusBadGateway, gin.H{"error": e.Error(), "key": e.Key})
	case validator.ValidationErrors:
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// invalidateCache acts on the workflow's cache hints. A failed
// invalidation is logged but never fails the request; the cache entries
// expire on their own.
func invalidateCache(hints []string) {
	if err := utils.InvalidateCachePatterns(hints); err != nil {
		config.LogError(config.GetLogger(), "response.go", "invalidateCache", "InvalidateCachePatterns", hints, err)
	}
}
