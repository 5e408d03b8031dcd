package api

import (
	"errors"
	"net/http"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthController handles login.
type AuthController struct {
	users service.UserService
}

// NewAuthController creates the controller.
func NewAuthController(users service.UserService) *AuthController {
	return &AuthController{users: users}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a signed token. Unknown email and
// wrong password produce the same response.
func (ctl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := ctl.users.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrForbidden) {
			// Authentication failures read as 401, not 403.
			Error(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		RespondError(c, err)
		return
	}

	Success(c, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}
