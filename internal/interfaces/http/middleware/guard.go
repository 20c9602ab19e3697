package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/usecases"
)

// RouteGuardMiddleware admits a request only when the guard would render the
// protected view. Otherwise it answers with the guard decision: 202 while the
// session is loading, 401 for the login redirect, 403 for the verification
// redirect.
func RouteGuardMiddleware(guard *usecases.RouteGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.Check()
		switch d.Action {
		case usecases.GuardRender:
			c.Next()
			return
		case usecases.GuardLoading:
			c.AbortWithStatusJSON(http.StatusAccepted, d)
			return
		}

		status, code := http.StatusUnauthorized, domainerrors.CodeUnauthorized
		if d.Navigation != nil && d.Navigation.To == usecases.RouteVerifyEmail {
			status, code = http.StatusForbidden, domainerrors.CodeEmailNotVerified
		}
		c.AbortWithStatusJSON(status, gin.H{
			"code":       code,
			"action":     d.Action,
			"navigation": d.Navigation,
		})
	}
}
