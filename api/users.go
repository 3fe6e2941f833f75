package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradersecho/tradersecho/auth"
	"github.com/tradersecho/tradersecho/models"
)

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	Username string `json:"username"`
	Pro      bool   `json:"pro"`
}

// Signup creates an account and returns a bearer token.
func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.getUserByUsername(req.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := models.User{Username: req.Username, PasswordHash: hash}
	if err := s.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	s.issueToken(c, user.Username)
}

// Login verifies credentials and returns a bearer token. Accepts JSON
// or form bodies for compatibility with existing clients.
func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.getUserByUsername(req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect username or password"})
		return
	}

	s.issueToken(c, user.Username)
}

// Me returns the authenticated user's profile.
func (s *Server) Me(c *gin.Context) {
	user := c.MustGet(contextUserKey).(*models.User)
	c.JSON(http.StatusOK, UserResponse{Username: user.Username, Pro: user.Pro})
}

// AdminMakePro flips a user's pro flag. Guarded by the admin token
// header rather than user auth.
func (s *Server) AdminMakePro(c *gin.Context) {
	if c.GetHeader("X-Admin-Token") != s.cfg.Auth.AdminToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user, err := s.getUserByUsername(username)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Pro = true
	if err := s.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, UserResponse{Username: user.Username, Pro: user.Pro})
}

const contextUserKey = "user"

// AuthRequired validates the bearer token and loads the user into the
// request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := s.userFromToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// ProRequired gates paid endpoints. Must run after AuthRequired.
func (s *Server) ProRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet(contextUserKey).(*models.User)
		if !user.Pro {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Upgrade to Pro to access this endpoint"})
			return
		}
		c.Next()
	}
}

func (s *Server) userFromToken(token string) (*models.User, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.getUserByUsername(claims.Username)
}

func (s *Server) getUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Server) issueToken(c *gin.Context, username string) {
	token, err := s.jwt.GenerateToken(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
