package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ignite-gym/ignitegym/internal/auth"
	"github.com/ignite-gym/ignitegym/internal/avatars"
	"github.com/ignite-gym/ignitegym/internal/models"
)

// SessionRequest represents a sign-in request
type SessionRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse represents a sign-in response
type SessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// CreateUserRequest represents a sign-up request
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateUserRequest carries any subset of the profile fields
type UpdateUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Password        string `json:"password" binding:"omitempty,min=6"`
	OldPassword     string `json:"old_password"`
	ConfirmPassword string `json:"confirm_password" binding:"omitempty,eqfield=Password"`
}

const (
	msgBadCredentials   = "E-mail and/or password incorrect."
	msgEmailInUse       = "This e-mail is already in use."
	msgOldPasswordNeed  = "Enter the old password to set a new one."
	msgOldPasswordWrong = "The old password does not match."
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// @Summary Sign in
// @Description Authenticate with e-mail and password
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /sessions [post]
func (s *Server) createSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	var user models.User
	err := s.db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		respondInternal(c, s.logger, err, "Failed to find user")
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		respondError(c, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	token, err := s.issuer.GenerateToken(user.ID, user.Email)
	if err != nil {
		respondInternal(c, s.logger, err, "Failed to generate token")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User signed in")

	c.JSON(http.StatusOK, SessionResponse{User: &user, Token: token})
}

// @Summary Sign up
// @Description Create a user account
// @Tags users
// @Accept json
// @Param request body CreateUserRequest true "New user"
// @Success 201
// @Failure 400 {object} map[string]interface{}
// @Router /users [post]
func (s *Server) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	email := normalizeEmail(req.Email)
	db := s.db.WithContext(c.Request.Context())

	inUse, err := s.emailInUse(db, email, "")
	if err != nil {
		respondInternal(c, s.logger, err, "Failed to check e-mail")
		return
	}
	if inUse {
		respondError(c, http.StatusBadRequest, msgEmailInUse)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(c, s.logger, err, "Failed to hash password")
		return
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := db.Create(user).Error; err != nil {
		respondInternal(c, s.logger, err, "Failed to create user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User created")
	c.Status(http.StatusCreated)
}

func (s *Server) emailInUse(db *gorm.DB, email, exceptID string) (bool, error) {
	query := db.Model(&models.User{}).Where("email = ?", email)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// @Summary Update profile
// @Description Update name, e-mail or password of the signed in user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /users [put]
func (s *Server) updateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	sessionData, _ := GetSessionData(c)
	db := s.db.WithContext(c.Request.Context())

	var user models.User
	if err := models.FindByID(db, sessionData.UserID, &user); err != nil {
		respondInternal(c, s.logger, err, "Failed to load user")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}

	if email := normalizeEmail(req.Email); email != "" && email != user.Email {
		inUse, err := s.emailInUse(db, email, user.ID)
		if err != nil {
			respondInternal(c, s.logger, err, "Failed to check e-mail")
			return
		}
		if inUse {
			respondError(c, http.StatusBadRequest, msgEmailInUse)
			return
		}
		user.Email = email
	}

	if req.Password != "" {
		if req.OldPassword == "" {
			respondError(c, http.StatusBadRequest, msgOldPasswordNeed)
			return
		}
		if err := auth.VerifyPassword(req.OldPassword, user.PasswordHash); err != nil {
			respondError(c, http.StatusBadRequest, msgOldPasswordWrong)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondInternal(c, s.logger, err, "Failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if err := db.Save(&user).Error; err != nil {
		respondInternal(c, s.logger, err, "Failed to update user")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Bool("password_changed", req.Password != "").Msg("Profile updated")
	c.JSON(http.StatusOK, user)
}

// @Summary Update avatar
// @Description Upload a new profile photo (multipart field "avatar")
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Router /users/avatar [patch]
func (s *Server) updateAvatar(c *gin.Context) {
	limit := s.opts.MaxAvatarSize
	// Leave room for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, tooLargeMessage(limit))
			return
		}
		respondError(c, http.StatusBadRequest, "Send the photo in the avatar field.")
		return
	}
	if fileHeader.Size > limit {
		respondError(c, http.StatusRequestEntityTooLarge, tooLargeMessage(limit))
		return
	}

	name, contentType, err := avatars.NewObjectName(fileHeader.Filename)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Unsupported image type. Use JPG, PNG, GIF or WebP.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternal(c, s.logger, err, "Failed to open upload")
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	if err := s.avatars.Save(ctx, name, file, fileHeader.Size, contentType); err != nil {
		respondInternal(c, s.logger, err, "Failed to store avatar")
		return
	}

	sessionData, _ := GetSessionData(c)
	db := s.db.WithContext(ctx)

	var user models.User
	if err := models.FindByID(db, sessionData.UserID, &user); err != nil {
		respondInternal(c, s.logger, err, "Failed to load user")
		return
	}

	previous := user.Avatar
	user.Avatar = name
	if err := db.Model(&user).Update("avatar", name).Error; err != nil {
		// The sweep removes the stored object later
		respondInternal(c, s.logger, err, "Failed to update avatar")
		return
	}

	if previous != "" {
		if err := s.avatars.Delete(ctx, previous); err != nil {
			s.logger.Warn().Err(err).Str("avatar", previous).Msg("Failed to delete previous avatar")
		}
	}

	s.logger.Info().Str("user_id", user.ID).Str("avatar", name).Msg("Avatar updated")
	c.JSON(http.StatusOK, user)
}

func tooLargeMessage(limit int64) string {
	return "This image is too large. Choose one up to " + strconv.FormatInt(limit>>20, 10) + "MB."
}

// @Summary Get avatar
// @Description Serve a stored profile photo
// @Tags users
// @Produce image/png,image/jpeg,image/gif,image/webp
// @Param file path string true "Object name"
// @Success 200
// @Failure 404 {object} map[string]interface{}
// @Router /avatar/{file} [get]
func (s *Server) getAvatar(c *gin.Context) {
	rc, obj, err := s.avatars.Open(c.Request.Context(), c.Param("file"))
	if err != nil {
		if errors.Is(err, avatars.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Avatar not found.")
			return
		}
		respondInternal(c, s.logger, err, "Failed to open avatar")
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, rc, nil)
}
