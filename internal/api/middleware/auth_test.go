package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/pkg/jwthelper"
)

func newProtectedRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", NewAuthenticator(key).VerifyJWT(), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"uid": ctx.GetUint(ContextKeyUserID)})
	})

	return r
}

func TestVerifyJWT(t *testing.T) {
	const key = "secret"
	r := newProtectedRouter(key)

	token, err := jwthelper.GenerateToken([]byte(key), 7, "lotto-test")
	require.NoError(t, err)

	tests := []struct {
		name      string
		header    string
		userAgent string
		want      int
	}{
		{name: "valid token", header: "Bearer " + token, userAgent: "lotto-test", want: http.StatusOK},
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "not bearer", header: token, userAgent: "lotto-test", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", userAgent: "lotto-test", want: http.StatusUnauthorized},
		{name: "other client", header: "Bearer " + token, userAgent: "stolen", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("User-Agent", tt.userAgent)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"uid":7}`, rec.Body.String())
			}
		})
	}
}
