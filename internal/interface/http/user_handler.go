package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/internal/interface/middleware"
	"github.com/nimbusworks/accounts-api/pkg/response"
	"github.com/nimbusworks/accounts-api/pkg/validation"
)

// ProfileService is the application surface the user endpoints need.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, ch entity.ProfileChanges) (*entity.User, error)
	UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error)
}

type UserHandler struct {
	Svc    ProfileService
	Logger *logrus.Logger
}

func NewUserHandler(svc ProfileService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// UpdateProfileRequest is the closed shape of a self-service profile
// update. Pointer fields distinguish "absent" from "set to empty";
// unknown JSON fields are never bound, so they cannot reach the write.
type UpdateProfileRequest struct {
	DisplayUsername *string `json:"displayUsername" binding:"omitempty,max=64"`
	Name            *string `json:"name" binding:"omitempty,max=128"`
	Image           *string `json:"image" binding:"omitempty,max=2048"`
}

// Me returns the authenticated caller's profile.
func (h *UserHandler) Me(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "you must be logged in", response.CodeUnauthorized, nil)
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", response.CodeUserNotFound, nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", sess.UserID).Error("get profile failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}
	response.Success(c, http.StatusOK, "profile", u.Public(), nil)
}

// UpdateProfile applies the allowlisted fields to the caller's own
// record. The target is always the session subject; an id in the body
// is not part of the schema and cannot redirect the write.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		// Mis-wired route; fail closed rather than panic.
		response.Error(c, http.StatusUnauthorized, "you must be logged in to update your profile", response.CodeUnauthorized, nil)
		return
	}

	// Validated upstream; re-parse defensively if the stage was skipped.
	req, ok := middleware.BodyFromContext[UpdateProfileRequest](c)
	if !ok {
		var body UpdateProfileRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
			return
		}
		req = &body
	}

	// Allowlist by construction: only these three fields exist on the
	// changes value, so nothing else can be written.
	changes := entity.ProfileChanges{
		DisplayUsername: req.DisplayUsername,
		Name:            req.Name,
		Image:           req.Image,
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), sess.UserID, changes)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", response.CodeUserNotFound, nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", sess.UserID).Error("profile update failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}

	response.Success(c, http.StatusOK, "user updated successfully", updatedFields(u, changes), nil)
}

// updatedFields echoes back the fields the caller changed, read from
// the post-update record, plus the refreshed timestamp.
func updatedFields(u *entity.User, ch entity.ProfileChanges) gin.H {
	data := gin.H{"updatedAt": u.UpdatedAt}
	if ch.DisplayUsername != nil {
		data["displayUsername"] = u.DisplayUsername
	}
	if ch.Name != nil {
		data["name"] = u.Name
	}
	if ch.Image != nil {
		data["image"] = u.Image
	}
	return data
}

const maxAvatarSize = 5 << 20 // 5 MiB

// UploadAvatar stores a new avatar image and updates the profile image
// URL through the same allowlist path as UpdateProfile.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "you must be logged in", response.CodeUnauthorized, nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, map[string]string{"file": "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxAvatarSize {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, map[string]string{"file": "must be at most 5MB"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, map[string]string{"file": "must be an image"})
		return
	}

	u, err := h.Svc.UploadAvatar(c.Request.Context(), sess.UserID, file, header.Filename, contentType)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", response.CodeUserNotFound, nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", sess.UserID).Error("avatar upload failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}

	response.Success(c, http.StatusOK, "avatar updated", gin.H{"image": u.Image, "updatedAt": u.UpdatedAt}, nil)
}
