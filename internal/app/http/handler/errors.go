package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard/internal/app/dto"
	"jobboard/internal/domain"
)

func (h *Handler) writeError(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		c.JSON(de.HTTPStatus, dto.ErrorResponse{
			Status:  de.HTTPStatus,
			Code:    string(de.Code),
			Message: de.Message,
			Path:    c.Request.URL.Path,
		})
		return
	}

	h.Log.Error("internal error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
		Path:    c.Request.URL.Path,
	})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    string(domain.ErrorCodeValidation),
		Message: msg,
		Path:    c.Request.URL.Path,
	})
}

var (
	errAuthMissing = domain.NewAuthenticationError("request is not authenticated")
	errInvalidPage = errors.New("page must be an integer")
	errInvalidSize = errors.New("size must be an integer")
)
