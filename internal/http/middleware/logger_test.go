package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestLoggerIncludesRequestIDAndUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(func(c *gin.Context) {
		// resolved session
		c.Set("user_id", "user-7")
		c.Next()
	})
	r.GET("/api/businesses", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/businesses", nil)
	req.Header.Set(HeaderRequestID, "rid-from-proxy")
	r.ServeHTTP(w, req)

	require.Equal(t, "rid-from-proxy", w.Header().Get(HeaderRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "rid-from-proxy", line["request_id"])
	require.Equal(t, "user-7", line["user_id"])
	require.Equal(t, float64(http.StatusOK), line["status"])
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	rid := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, rid)
	require.Equal(t, rid, w.Body.String())
}
