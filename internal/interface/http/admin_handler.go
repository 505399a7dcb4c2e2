package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/pkg/response"
	"github.com/nimbusworks/accounts-api/pkg/validation"
)

// AdminAPI is the application surface the admin endpoints need.
type AdminAPI interface {
	SetRole(ctx context.Context, userID string, role entity.Role) error
	Ban(ctx context.Context, userID, reason string, expires *time.Time) error
	Unban(ctx context.Context, userID string) error
}

// UserSearcher queries the user search index.
type UserSearcher interface {
	SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error)
}

type AdminHandler struct {
	Svc    AdminAPI
	Search UserSearcher
	Logger *logrus.Logger
}

func NewAdminHandler(svc AdminAPI, search UserSearcher, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Search: search, Logger: logger}
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// SetRole changes a user's role. PUT /api/admin/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
		return
	}
	uid := c.Param("id")
	if err := h.Svc.SetRole(c.Request.Context(), uid, entity.Role(req.Role)); err != nil {
		h.adminError(c, err, uid, "set role failed")
		return
	}
	response.Success(c, http.StatusOK, "role updated", gin.H{"id": uid, "role": req.Role}, nil)
}

type banRequest struct {
	Reason    string     `json:"reason" binding:"omitempty,max=512"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// Ban marks a user as banned. POST /api/admin/users/:id/ban
func (h *AdminHandler) Ban(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
		return
	}
	uid := c.Param("id")
	if err := h.Svc.Ban(c.Request.Context(), uid, req.Reason, req.ExpiresAt); err != nil {
		h.adminError(c, err, uid, "ban failed")
		return
	}
	response.Success(c, http.StatusOK, "user banned", gin.H{"id": uid, "banned": true}, nil)
}

// Unban lifts a ban. DELETE /api/admin/users/:id/ban
func (h *AdminHandler) Unban(c *gin.Context) {
	uid := c.Param("id")
	if err := h.Svc.Unban(c.Request.Context(), uid); err != nil {
		h.adminError(c, err, uid, "unban failed")
		return
	}
	response.Success(c, http.StatusOK, "user unbanned", gin.H{"id": uid, "banned": false}, nil)
}

// SearchUsers queries the search index. GET /api/admin/users/search?q=&size=
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Search.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("user search failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}
	response.Success(c, http.StatusOK, "search results", hits, gin.H{"count": len(hits)})
}

func (h *AdminHandler) adminError(c *gin.Context, err error, uid, msg string) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "user not found", response.CodeUserNotFound, nil)
	case errors.Is(err, application.ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, map[string]string{"role": "must be one of: user admin"})
	default:
		h.Logger.WithError(err).WithField("user_id", uid).Error(msg)
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
	}
}
