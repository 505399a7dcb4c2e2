package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nimbusworks/accounts-api/pkg/response"
	"github.com/nimbusworks/accounts-api/pkg/validation"
)

// CtxBodyKey is the gin context key the validated request body lives under.
const CtxBodyKey = "validated_body"

// ValidateBody parses and validates the JSON body into T before the
// handler runs, short-circuiting with a 400 envelope on violation. The
// typed value is attached to the context for downstream use.
func ValidateBody[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body T
		if err := c.ShouldBindJSON(&body); err != nil {
			response.AbortError(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
			return
		}
		c.Set(CtxBodyKey, &body)
		c.Next()
	}
}

// BodyFromContext returns the value attached by ValidateBody.
func BodyFromContext[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(CtxBodyKey)
	if !ok {
		return nil, false
	}
	body, ok := v.(*T)
	return body, ok && body != nil
}
