package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/metrics"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/utils"
	"github.com/avesovich/reporting-with-rss-news/internal/workflow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Listing page sizes.
const (
	ArticlePageSize = 10
	CommentPageSize = 5
)

// CreateArticleInput carries a new report submission. Free-text fields
// are sanitized before storage.
type CreateArticleInput struct {
	Title           string   `json:"title"`
	TypeOfReport    string   `json:"type_of_report"`
	PublicationDate string   `json:"publication_date"`
	URL             string   `json:"url"`
	DetailedSummary string   `json:"detailed_summary"`
	Analysis        string   `json:"analysis"`
	Recommendation  string   `json:"recommendation"`
	ImagePaths      []string `json:"image_paths"`
}

// UpdateArticleInput carries a resubmission. Only content fields may
// change; owner and identity are immutable.
type UpdateArticleInput struct {
	Title           string   `json:"title"`
	TypeOfReport    string   `json:"type_of_report"`
	PublicationDate string   `json:"publication_date"`
	URL             string   `json:"url"`
	DetailedSummary string   `json:"detailed_summary"`
	Analysis        string   `json:"analysis"`
	Recommendation  string   `json:"recommendation"`
	ImagePaths      []string `json:"image_paths"`
}

// ArticleListing is one page of a status-filtered listing.
type ArticleListing struct {
	Articles []*model.Article `json:"articles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ArticleDetail is the detail view: the article plus one page of its
// comments.
type ArticleDetail struct {
	Article       *model.Article   `json:"article"`
	Comments      []*model.Comment `json:"comments"`
	CommentsTotal int64            `json:"comments_total"`
	CommentsPage  int              `json:"comments_page"`
}

// ArticleService implements the approval workflow around stored reports.
type ArticleService interface {
	Create(actor *policy.Actor, in *CreateArticleInput) (*model.Article, error)
	List(actor *policy.Actor, status string, page int) (*ArticleListing, error)
	Show(actor *policy.Actor, id string, commentPage int) (*ArticleDetail, error)
	// Decide renders an approval verdict on the article. The state
	// machine picks the next status from (current, role, decision).
	Decide(actor *policy.Actor, id, decision string) (*model.Article, error)
	// Resubmit applies a content update to an owned Revision article and
	// moves it to Updated in the same write.
	Resubmit(actor *policy.Actor, id string, in *UpdateArticleInput) (*model.Article, error)
}

type articleService struct {
	articles repository.ArticleRepository
	comments repository.CommentRepository
	policy   *policy.Policy
	oracle   auth.RoleOracle
	location *time.Location
	logger   *logrus.Logger
	now      func() time.Time
}

// NewArticleService creates the service.
func NewArticleService(
	articles repository.ArticleRepository,
	comments repository.CommentRepository,
	pol *policy.Policy,
	oracle auth.RoleOracle,
	loc *time.Location,
	logger *logrus.Logger,
) ArticleService {
	return &articleService{
		articles: articles,
		comments: comments,
		policy:   pol,
		oracle:   oracle,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// validateContent checks the shared content fields of a submission.
func validateContent(title, typeOfReport, pubDate, rawURL, summary, analysis, recommendation string) map[string]string {
	fields := map[string]string{}
	if !utils.RequiredText(title, 255) {
		fields["title"] = "required, at most 255 characters"
	}
	if !model.IsValidReportType(typeOfReport) {
		fields["type_of_report"] = "unknown report type"
	}
	if !utils.ValidateDate(pubDate) {
		fields["publication_date"] = "must be a valid date (YYYY-MM-DD)"
	}
	if !utils.ValidateURL(rawURL) {
		fields["url"] = "must be a valid http(s) URL"
	}
	if !utils.RequiredText(summary, 0) {
		fields["detailed_summary"] = "required"
	}
	if !utils.RequiredText(analysis, 0) {
		fields["analysis"] = "required"
	}
	if !utils.RequiredText(recommendation, 0) {
		fields["recommendation"] = "required"
	}
	return fields
}

func encodeImagePaths(paths []string) (string, error) {
	if len(paths) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(paths)
	if err != nil {
		return "", fmt.Errorf("failed to encode image paths: %w", err)
	}
	return string(encoded), nil
}

func (s *articleService) Create(actor *policy.Actor, in *CreateArticleInput) (*model.Article, error) {
	if err := s.policy.CanCreateArticle(actor.ID); err != nil {
		return nil, err
	}

	fields := validateContent(in.Title, in.TypeOfReport, in.PublicationDate,
		in.URL, in.DetailedSummary, in.Analysis, in.Recommendation)
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	imagePaths, err := encodeImagePaths(in.ImagePaths)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	article := &model.Article{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		EditorName:      actor.Name,
		Title:           utils.SanitizeText(in.Title),
		TypeOfReport:    in.TypeOfReport,
		PublicationDate: in.PublicationDate,
		URL:             in.URL,
		DetailedSummary: utils.SanitizeText(in.DetailedSummary),
		Analysis:        utils.SanitizeText(in.Analysis),
		Recommendation:  utils.SanitizeText(in.Recommendation),
		ImagePaths:      imagePaths,
		ApprovalStatus:  model.StatusReview,
		PostedDate:      now.Format("2006-01-02"),
		TimePosted:      now.Format("15:04:05"),
	}

	if err := s.articles.Create(article); err != nil {
		return nil, err
	}
	metrics.RecordArticleCreated()

	s.logger.WithFields(logrus.Fields{
		"article_id": article.ID,
		"editor":     actor.ID,
		"type":       article.TypeOfReport,
	}).Info("article report submitted")

	return article, nil
}

func (s *articleService) List(actor *policy.Actor, status string, page int) (*ArticleListing, error) {
	if !model.IsValidStatus(status) {
		return nil, model.ErrNotFound
	}
	if err := s.policy.CanListStatus(actor.ID, status); err != nil {
		return nil, err
	}

	filter := &repository.ArticleFilter{
		Status:   status,
		Page:     page,
		PageSize: ArticlePageSize,
	}
	ownerOnly, err := s.policy.ListOwnerOnly(actor.ID)
	if err != nil {
		return nil, err
	}
	if ownerOnly {
		filter.OwnerID = actor.ID
	}

	articles, total, err := s.articles.ListByStatus(filter)
	if err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	return &ArticleListing{
		Articles: articles,
		Total:    total,
		Page:     filter.Page,
		PageSize: ArticlePageSize,
	}, nil
}

func (s *articleService) Show(actor *policy.Actor, id string, commentPage int) (*ArticleDetail, error) {
	if !utils.ValidateID(id) {
		return nil, model.ErrNotFound
	}
	article, err := s.articles.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanViewArticle(actor.ID, article); err != nil {
		return nil, err
	}

	// Executives read only their own feedback thread.
	commentAuthor := ""
	isExec, err := s.oracle.HasRole(actor.ID, model.RoleExecutive)
	if err != nil {
		return nil, err
	}
	if isExec {
		commentAuthor = actor.ID
	}

	comments, total, err := s.comments.ListForArticle(article.ID, commentAuthor, commentPage, CommentPageSize)
	if err != nil {
		return nil, err
	}
	if commentPage < 1 {
		commentPage = 1
	}
	return &ArticleDetail{
		Article:       article,
		Comments:      comments,
		CommentsTotal: total,
		CommentsPage:  commentPage,
	}, nil
}

func (s *articleService) Decide(actor *policy.Actor, id, decision string) (*model.Article, error) {
	if !utils.ValidateID(id) {
		return nil, model.ErrNotFound
	}
	if err := s.policy.CanTransition(actor.ID); err != nil {
		return nil, err
	}

	article, err := s.articles.FindByID(id)
	if err != nil {
		return nil, err
	}

	// The stored role is authoritative, not whatever the token claims.
	role, err := s.oracle.PrimaryRole(actor.ID)
	if err != nil {
		return nil, err
	}

	next, err := workflow.Decide(article.ApprovalStatus, role, decision)
	if err != nil {
		return nil, err
	}

	if next != article.ApprovalStatus {
		if err := s.articles.Transition(article.ID, article.ApprovalStatus, next); err != nil {
			return nil, err
		}
	}
	metrics.RecordTransition(role, decision)

	s.logger.WithFields(logrus.Fields{
		"article_id": article.ID,
		"actor":      actor.ID,
		"role":       role,
		"decision":   decision,
		"from":       article.ApprovalStatus,
		"to":         next,
	}).Info("approval decision recorded")

	article.ApprovalStatus = next
	return article, nil
}

func (s *articleService) Resubmit(actor *policy.Actor, id string, in *UpdateArticleInput) (*model.Article, error) {
	if !utils.ValidateID(id) {
		return nil, model.ErrNotFound
	}
	article, err := s.articles.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanUpdateContent(actor.ID, article); err != nil {
		return nil, err
	}

	fields := validateContent(in.Title, in.TypeOfReport, in.PublicationDate,
		in.URL, in.DetailedSummary, in.Analysis, in.Recommendation)
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	imagePaths, err := encodeImagePaths(in.ImagePaths)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":            utils.SanitizeText(in.Title),
		"type_of_report":   in.TypeOfReport,
		"publication_date": in.PublicationDate,
		"url":              in.URL,
		"detailed_summary": utils.SanitizeText(in.DetailedSummary),
		"analysis":         utils.SanitizeText(in.Analysis),
		"recommendation":   utils.SanitizeText(in.Recommendation),
		"image_paths":      imagePaths,
	}

	if err := s.articles.Resubmit(article.ID, actor.ID, updates); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"article_id": article.ID,
		"editor":     actor.ID,
	}).Info("article resubmitted for review")

	return s.articles.FindByID(article.ID)
}
