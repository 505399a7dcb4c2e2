package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusworks/accounts-api/pkg/validation"
)

type renameRequest struct {
	Name *string `json:"name" binding:"omitempty,max=8"`
}

func validateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	validation.Init()
	r := gin.New()
	r.PUT("/rename", ValidateBody[renameRequest](), func(c *gin.Context) {
		body, ok := BodyFromContext[renameRequest](c)
		require.True(t, ok, "validated body must be in context")
		name := ""
		if body.Name != nil {
			name = *body.Name
		}
		c.String(http.StatusOK, name)
	})
	return r
}

func putJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestValidateBody_Valid(t *testing.T) {
	r := validateRouter(t)
	w := putJSON(r, "/rename", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", w.Body.String())
}

func TestValidateBody_WrongType(t *testing.T) {
	r := validateRouter(t)
	w := putJSON(r, "/rename", `{"name":123}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details["name"], "must be of type")
}

func TestValidateBody_MalformedJSON(t *testing.T) {
	r := validateRouter(t)
	w := putJSON(r, "/rename", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateBody_ConstraintViolation(t *testing.T) {
	r := validateRouter(t)
	w := putJSON(r, "/rename", `{"name":"far-too-long-name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Contains(t, env.Error.Details, "name")
}
