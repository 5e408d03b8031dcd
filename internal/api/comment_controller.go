package api

import (
	"net/http"

	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/gin-gonic/gin"
)

// CommentController attaches reviewer feedback to articles.
type CommentController struct {
	comments service.CommentService
}

// NewCommentController creates the controller.
func NewCommentController(comments service.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type createCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// Create adds a comment to the article.
func (ctl *CommentController) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "comment is required")
		return
	}

	comment, err := ctl.comments.Create(currentActor(c), c.Param("id"), req.Comment)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: comment})
}
