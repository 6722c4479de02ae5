package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/service"
)

// bindJSON разбирает тело запроса. Ошибки валидации тегов превращаются в 422 с
// перечнем полей, прочие ошибки разбора - в 400.
func bindJSON(c *gin.Context, params any) bool {
	if bindErr := c.ShouldBindJSON(params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return false
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

// abortServiceError переводит ошибки сервисного слоя в http статусы.
func abortServiceError(c *gin.Context, err error) {
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": valErr.Message,
			"field": valErr.Field,
		})
		return
	}
	if service.IsNotFound(err) {
		_ = c.AbortWithError(http.StatusNotFound, err).SetType(gin.ErrorTypePrivate)
		return
	}
	_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
}
