package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/avesovich/reporting-with-rss-news/internal/workflow"
	"github.com/gin-gonic/gin"
)

// ArticleController exposes the report workflow: submission, listing,
// detail, approval decisions, resubmission and CSV export.
type ArticleController struct {
	articles service.ArticleService
	export   service.ExportService
}

// NewArticleController creates the controller.
func NewArticleController(articles service.ArticleService, export service.ExportService) *ArticleController {
	return &ArticleController{articles: articles, export: export}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Create submits a new report. The article starts in Review.
func (ctl *ArticleController) Create(c *gin.Context) {
	var in service.CreateArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "malformed request body")
		return
	}

	article, err := ctl.articles.Create(currentActor(c), &in)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: article})
}

// List pages articles in one approval status.
func (ctl *ArticleController) List(c *gin.Context) {
	status := c.Param("status")

	listing, err := ctl.articles.List(currentActor(c), status, pageParam(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Paginated(c, listing.Articles, NewPagination(listing.Page, listing.PageSize, listing.Total))
}

// Show returns one article with a page of its comments.
func (ctl *ArticleController) Show(c *gin.Context) {
	commentPage, err := strconv.Atoi(c.DefaultQuery("comment_page", "1"))
	if err != nil || commentPage < 1 {
		commentPage = 1
	}

	detail, err := ctl.articles.Show(currentActor(c), c.Param("id"), commentPage)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, detail)
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// Decide records an approval verdict on the article.
func (ctl *ArticleController) Decide(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "decision is required")
		return
	}

	article, err := ctl.articles.Decide(currentActor(c), c.Param("id"), req.Decision)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, article)
}

// Approve is shorthand for an approving decision.
func (ctl *ArticleController) Approve(c *gin.Context) {
	article, err := ctl.articles.Decide(currentActor(c), c.Param("id"), workflow.DecisionApproved)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, article)
}

// Disapprove is shorthand for a disapproving decision.
func (ctl *ArticleController) Disapprove(c *gin.Context) {
	article, err := ctl.articles.Decide(currentActor(c), c.Param("id"), workflow.DecisionDisapproved)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, article)
}

// Resubmit applies a content update to an owned Revision article,
// moving it to Updated.
func (ctl *ArticleController) Resubmit(c *gin.Context) {
	var in service.UpdateArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "malformed request body")
		return
	}

	article, err := ctl.articles.Resubmit(currentActor(c), c.Param("id"), &in)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, article)
}

// ExportCSV returns the reports of one status as a CSV attachment. The
// document is built in memory so failures still produce a clean error
// envelope instead of a truncated download.
func (ctl *ArticleController) ExportCSV(c *gin.Context) {
	status := c.Param("status")

	var buf bytes.Buffer
	if err := ctl.export.ExportCSV(currentActor(c), status, &buf); err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "articles_"+status+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
