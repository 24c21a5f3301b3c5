package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/app/dto"
)

func ZapRecovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.Any("panic", rec))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Status:  http.StatusInternalServerError,
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
					Path:    c.Request.URL.Path,
				})
			}
		}()

		c.Next()
	}
}
