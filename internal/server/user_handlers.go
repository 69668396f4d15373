package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/savora-app/savora/internal/models"
)

// maxAvatarSize mirrors the client-side limit (5 MB)
const maxAvatarSize = 5 * 1024 * 1024

// UpdateProfileRequest carries the profile fields that can be changed.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}

// UploadAvatarResponse is the upload-avatar response envelope
type UploadAvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// StatsResponse summarizes the current user's activity
type StatsResponse struct {
	RecipeCount int `json:"recipeCount"`
}

// @Summary Update profile
// @Description Update profile fields of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} UserDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/user/profile [put]
func (s *Server) updateProfile(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := s.db.Where("id = ?", sessionData.UserID).First(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to find user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name must not be empty"})
			return
		}
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := s.db.Save(&user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")

	c.JSON(http.StatusOK, userDetail(&user))
}

// @Summary Upload avatar
// @Description Upload a new avatar image (multipart field "avatar", max 5MB, image/*)
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UploadAvatarResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/user/upload-avatar [post]
func (s *Server) uploadAvatar(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing avatar file"})
		return
	}

	if fileHeader.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Avatar must not exceed 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read upload"})
		return
	}
	defer file.Close()

	// Sniff the real content type, the declared header is not trusted
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		s.logger.Error().Err(err).Msg("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read upload"})
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only image files are accepted"})
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		s.logger.Error().Err(err).Msg("Failed to rewind uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read upload"})
		return
	}

	// One file per upload, named by ULID so old avatars are never overwritten
	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = extensionFor(contentType)
	}
	fileName := ulid.Make().String() + ext
	destPath := filepath.Join(s.config.Uploads.Dir, fileName)

	dest, err := os.Create(destPath)
	if err != nil {
		s.logger.Error().Err(err).Str("path", destPath).Msg("Failed to create avatar file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store avatar"})
		return
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		s.logger.Error().Err(err).Str("path", destPath).Msg("Failed to write avatar file")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store avatar"})
		return
	}

	avatarURL := fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.config.HTTP.PublicURL, "/"), fileName)

	if err := s.db.Model(&models.User{}).
		Where("id = ?", sessionData.UserID).
		Update("avatar_url", avatarURL).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to save avatar URL")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store avatar"})
		return
	}

	s.logger.Info().Str("user_id", sessionData.UserID).Str("avatar_url", avatarURL).Msg("Avatar uploaded")

	c.JSON(http.StatusOK, UploadAvatarResponse{AvatarURL: avatarURL})
}

// extensionFor maps a sniffed image content type to a file extension
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}

// @Summary User stats
// @Description Activity statistics for the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/user/stats [get]
func (s *Server) getStats(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var count int64
	if err := s.db.Model(&models.Recipe{}).Where("created_by_id = ?", sessionData.UserID).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", sessionData.UserID).Msg("Failed to count recipes")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{RecipeCount: int(count)})
}
