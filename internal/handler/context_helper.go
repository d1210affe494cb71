package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-portal-api/internal/middleware"
	"github.com/noah-isme/faculty-portal-api/internal/models"
	appErrors "github.com/noah-isme/faculty-portal-api/pkg/errors"
	"github.com/noah-isme/faculty-portal-api/pkg/response"
)

// principalFromContext writes a 401 and returns false when no principal is attached.
func principalFromContext(c *gin.Context) (*models.Principal, bool) {
	principal, ok := middleware.Principal(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return principal, true
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
