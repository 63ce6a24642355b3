package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmitrijs2005/consultbook/internal/common"
	"github.com/dmitrijs2005/consultbook/internal/logging"
	"github.com/dmitrijs2005/consultbook/internal/server/auth"
)

func TestRequestLogger_TagsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(requestIDMiddleware(), requestLoggerMiddleware(logging.NewZapLogger(zap.New(core))))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(common.RequestIDHeaderName, "rid-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, logs.All(), 1)
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "rid-7", fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("s")

	r := gin.New()
	r.GET("/me", bearerAuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(userIDKey))
	})

	good, err := auth.GenerateToken("u1", secret, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{name: "missing", header: "", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc", code: http.StatusUnauthorized},
		{name: "ok", header: "Bearer " + good, code: http.StatusOK, body: "u1"},
		{name: "lower case scheme", header: "bearer " + good, code: http.StatusOK, body: "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
