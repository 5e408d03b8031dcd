package service

import (
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CommentService attaches reviewer feedback to articles.
type CommentService interface {
	// Create adds feedback to an article the actor may view. Editors
	// receive feedback; only administrators and executives write it.
	Create(actor *policy.Actor, articleID, text string) (*model.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	policy   *policy.Policy
	logger   *logrus.Logger
}

// NewCommentService creates the service.
func NewCommentService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	pol *policy.Policy,
	logger *logrus.Logger,
) CommentService {
	return &commentService{
		comments: comments,
		articles: articles,
		policy:   pol,
		logger:   logger,
	}
}

func (s *commentService) Create(actor *policy.Actor, articleID, text string) (*model.Comment, error) {
	if err := s.policy.CanComment(actor.ID); err != nil {
		return nil, err
	}
	if !utils.ValidateID(articleID) {
		return nil, model.ErrNotFound
	}
	article, err := s.articles.FindByID(articleID)
	if err != nil {
		return nil, err
	}
	// Commenting requires the same visibility as reading: executives
	// cannot leave feedback on statuses hidden from them.
	if err := s.policy.CanViewArticle(actor.ID, article); err != nil {
		return nil, err
	}

	sanitized := utils.SanitizeText(text)
	if !utils.RequiredText(sanitized, model.MaxCommentLength) {
		return nil, model.NewValidationError("comment",
			"required, at most 1000 characters")
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		UserID:    actor.ID,
		Comment:   sanitized,
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"article_id": article.ID,
		"author":     actor.ID,
	}).Info("comment added")

	return comment, nil
}
