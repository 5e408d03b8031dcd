package api

import (
	"net/http"

	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/gin-gonic/gin"
)

// UserController exposes admin-only account management.
type UserController struct {
	users service.UserService
}

// NewUserController creates the controller.
func NewUserController(users service.UserService) *UserController {
	return &UserController{users: users}
}

// List pages accounts, optionally filtered by search text and role.
func (ctl *UserController) List(c *gin.Context) {
	listing, err := ctl.users.List(currentActor(c),
		c.Query("search"), c.Query("role"), pageParam(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Paginated(c, listing.Users, NewPagination(listing.Page, listing.PageSize, listing.Total))
}

// Create adds an account.
func (ctl *UserController) Create(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := ctl.users.Create(currentActor(c), &in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: user})
}

// Update modifies an account.
func (ctl *UserController) Update(c *gin.Context) {
	var in service.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := ctl.users.Update(currentActor(c), c.Param("id"), &in)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}

// Delete removes an account. Self-deletion is rejected.
func (ctl *UserController) Delete(c *gin.Context) {
	if err := ctl.users.Delete(currentActor(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
