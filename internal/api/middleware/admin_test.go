package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
)

type stubUsers map[uint]domain.User

func (s stubUsers) GetUser(_ context.Context, id uint) (domain.User, error) {
	u, ok := s[id]
	if !ok {
		return domain.User{}, assert.AnError
	}
	return u, nil
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := stubUsers{
		1: {ID: 1, Role: domain.RoleAdmin},
		2: {ID: 2, Role: domain.RoleUser},
	}

	tests := []struct {
		name   string
		userID uint
		want   int
	}{
		{name: "admin", userID: 1, want: http.StatusOK},
		{name: "regular user", userID: 2, want: http.StatusForbidden},
		{name: "unknown user", userID: 3, want: http.StatusForbidden},
		{name: "no user", userID: 0, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", func(ctx *gin.Context) {
				if tt.userID != 0 {
					ctx.Set(ContextKeyUserID, tt.userID)
				}
				ctx.Next()
			}, RequireAdmin(users), func(ctx *gin.Context) {
				ctx.Status(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
