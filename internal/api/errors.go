package api

import (
	"net/http"

	"levelup/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// abortWithError maps service errors onto HTTP statuses. Unexpected errors
// are logged and hidden behind msg.
func abortWithError(c *gin.Context, log *zap.Logger, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrIncompleteProgress),
		errors.Is(err, service.ErrAlreadyUnlocked),
		errors.Is(err, service.ErrIncompleteBundle),
		errors.Is(err, service.ErrNoAlternatives):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPreconditionUnmet):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTemplate),
		errors.Is(err, service.ErrInvalidClassOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
