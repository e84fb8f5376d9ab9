package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/database"
	"github.com/foodlinkhq/foodlink/pkg/errors"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// Health returns a simple status payload useful for readiness checks. When db is set the
// database must answer a ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := database.Ping(db); err != nil {
				response.Error(c, errors.ErrRepositoryUnavailable.WithInternal(err))
				return
			}
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
