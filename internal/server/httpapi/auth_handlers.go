package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
)

type registerRequest struct {
	UserName   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Profession string `json:"profession"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type updateDetailsRequest struct {
	Email    string `json:"email"`
	UserName string `json:"username"`
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	user, err := s.deps.Users.Register(c.Request.Context(), services.RegisterInput{
		UserName:   req.UserName,
		Email:      req.Email,
		Password:   req.Password,
		Profession: req.Profession,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
}

func (s *HTTPServer) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(common.RefreshTokenCookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	res, err := s.deps.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setRefreshCookie(c, res.RefreshToken, int(s.cfg.RefreshTokenValidityDuration.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"user":         res.User,
	})
}

// refresh accepts the token from the body, falling back to the cookie.
func (s *HTTPServer) refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(common.RefreshTokenCookieName)
	}

	pair, err := s.deps.Users.RefreshToken(c.Request.Context(), token)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken, int(s.cfg.RefreshTokenValidityDuration.Seconds()))
	c.JSON(http.StatusOK, pair)
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.deps.Users.Logout(c.Request.Context(), callerID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	s.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *HTTPServer) profile(c *gin.Context) {
	user, err := s.deps.Users.Profile(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *HTTPServer) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	if err := s.deps.Users.ChangePassword(c.Request.Context(), callerID(c), req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (s *HTTPServer) updateDetails(c *gin.Context) {
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	user, err := s.deps.Users.UpdateDetails(c.Request.Context(), callerID(c), req.Email, req.UserName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User details updated successfully", "user": user})
}
