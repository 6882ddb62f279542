package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
)

var errNotAdmin = errors.New("admin role required")

type UserFinder interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

// RequireAdmin must run after VerifyJWT.
func RequireAdmin(users UserFinder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID := ctx.GetUint(ContextKeyUserID)
		if userID == 0 {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			ctx.Abort()
			return
		}

		user, err := users.GetUser(ctx.Request.Context(), userID)
		if err != nil {
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v: %w", userID, errNotAdmin)))
			ctx.Abort()
			return
		}

		if !user.IsAdmin() {
			response.RenderErr(ctx, response.ErrPermissionDenied(errNotAdmin))
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}
