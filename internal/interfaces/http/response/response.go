package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "blip.dashboard/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Anything that is not an AppError becomes a
// generic internal error; raw error text never reaches the client.
func Error(c *gin.Context, err error) {
	appErr, ok := domainerrors.As(err)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}
	_ = c.Error(err)

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"kind":    appErr.Kind,
		"message": appErr.Message,
	})
}

// ErrorWithExtra sends an error response with additional fields.
func ErrorWithExtra(c *gin.Context, err error, extra gin.H) {
	appErr, ok := domainerrors.As(err)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}
	_ = c.Error(err)

	body := gin.H{
		"code":    appErr.Code,
		"kind":    appErr.Kind,
		"message": appErr.Message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(appErr.Status, body)
}
