package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by login and refresh
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
	Role         string       `json:"role"`
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, "Email and password are required")
		return
	}

	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error().Err(err).Msg("Failed to query user")
		abortWithMessage(c, s.logger, http.StatusInternalServerError, err, "Internal server error")
		return
	}
	if err != nil || !CheckPassword(user.PasswordHash, req.Password) {
		abortWithMessage(c, s.logger, http.StatusUnauthorized, errors.New("bad credentials"), "Invalid email or password")
		return
	}

	s.respondWithTokens(c, &user)
}

func (s *Server) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, "Refresh token is required")
		return
	}

	claims, err := s.tokens.Validate(req.RefreshToken, tokenTypeRefresh)
	if err != nil {
		abortWithMessage(c, s.logger, http.StatusUnauthorized, err, "Invalid or expired refresh token")
		return
	}

	var user models.User
	if err := models.FindByID(s.db, claims.UserID, &user); err != nil {
		abortWithMessage(c, s.logger, http.StatusUnauthorized, errUnknownUser, "User not found")
		return
	}

	// Rotate: the presented refresh token cannot be used again
	s.tokens.Revoke(claims)
	s.respondWithTokens(c, &user)
}

func (s *Server) respondWithTokens(c *gin.Context, user *models.User) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue tokens")
		abortWithMessage(c, s.logger, http.StatusInternalServerError, err, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
		Role:         user.Role,
	})
}

func (s *Server) logout(c *gin.Context) {
	var req LogoutRequest
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	if req.RefreshToken != "" {
		if claims, err := s.tokens.Validate(req.RefreshToken, tokenTypeRefresh); err == nil {
			s.tokens.Revoke(claims)
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getCurrentUser(c *gin.Context) {
	caller, _ := callerFrom(c)

	var user models.User
	if err := models.FindByID(s.db, caller.UserID, &user); err != nil {
		abortWithMessage(c, s.logger, http.StatusNotFound, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}
