package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(fn gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, http.StatusCreated, "created", gin.H{"id": "u-1"}, gin.H{"count": 1})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "created", env["message"])
	assert.Equal(t, "u-1", env["data"].(map[string]any)["id"])
	assert.NotContains(t, env, "error")
}

func TestSuccessDefaultsStatus(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, 0, "ok", gin.H{}, nil)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "user not found", CodeUserNotFound, map[string]string{"id": "unknown"})
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, false, env["success"])
	errBody := env["error"].(map[string]any)
	assert.Equal(t, "USER_NOT_FOUND", errBody["code"])
	assert.Equal(t, "unknown", errBody["details"].(map[string]any)["id"])
	assert.NotContains(t, env, "data")
}

func TestErrorDefaults(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, 0, "boom", "", nil)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", env["error"].(map[string]any)["code"])
}

func TestAbortErrorStopsChain(t *testing.T) {
	r := gin.New()
	reached := false
	r.GET("/", func(c *gin.Context) {
		AbortError(c, http.StatusUnauthorized, "nope", CodeUnauthorized, nil)
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}
