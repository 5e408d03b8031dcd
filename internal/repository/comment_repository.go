package repository

import (
	"fmt"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/gorm"
)

// CommentRepository persists article comments, newest first.
type CommentRepository interface {
	Create(comment *model.Comment) error
	ListForArticle(articleID, authorID string, page, pageSize int) ([]*model.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates the repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListForArticle pages comments for one article. A non-empty authorID
// scopes the listing to that author (executives only read their own
// feedback).
func (r *commentRepository) ListForArticle(articleID, authorID string, page, pageSize int) ([]*model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).Where("article_id = ?", articleID)
	if authorID != "" {
		query = query.Where("user_id = ?", authorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 5
	}

	var comments []*model.Comment
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}
