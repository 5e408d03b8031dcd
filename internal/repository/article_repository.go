package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/gorm"
)

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Status   string
	OwnerID  string // restrict to one owning editor when non-empty
	Page     int
	PageSize int
}

// ArticleRepository persists articles. Approval status is never written
// directly; it only changes through the conditional transition methods,
// which make a lost race observable as Conflict instead of a silent
// overwrite.
type ArticleRepository interface {
	Create(article *model.Article) error
	FindByID(id string) (*model.Article, error)
	ListByStatus(filter *ArticleFilter) ([]*model.Article, int64, error)
	AllByStatus(status, ownerID string) ([]*model.Article, error)
	// Transition moves id from expected to next, failing with Conflict
	// when another actor moved it first.
	Transition(id, expected, next string) error
	// Resubmit applies a content update and the Revision->Updated move
	// as one conditional write scoped to the owning editor.
	Resubmit(id, ownerID string, fields map[string]interface{}) error
}

type articleRepository struct {
	db *gorm.DB
	// invalidate fires after every successful create or update so the
	// derived stat counters never outlive a write. Fire-and-forget.
	invalidate func()
}

// NewArticleRepository creates the repository. invalidate may be nil.
func NewArticleRepository(db *gorm.DB, invalidate func()) ArticleRepository {
	return &articleRepository{db: db, invalidate: invalidate}
}

func (r *articleRepository) evict() {
	if r.invalidate != nil {
		r.invalidate()
	}
}

func (r *articleRepository) Create(article *model.Article) error {
	if err := r.db.Create(article).Error; err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	r.evict()
	return nil
}

func (r *articleRepository) FindByID(id string) (*model.Article, error) {
	var article model.Article
	if err := r.db.Where("id = ?", id).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	return &article, nil
}

// ListByStatus pages through one status. Review lists newest submissions
// first; every other status orders by last modification.
func (r *articleRepository) ListByStatus(filter *ArticleFilter) ([]*model.Article, int64, error) {
	query := r.db.Model(&model.Article{}).Where("approval_status = ?", filter.Status)
	if filter.OwnerID != "" {
		query = query.Where("user_id = ?", filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	order := "updated_at DESC"
	if filter.Status == model.StatusReview {
		order = "created_at DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var articles []*model.Article
	err := query.Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&articles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, total, nil
}

// AllByStatus returns every row of a status, optionally owner-scoped.
// Used by the CSV export.
func (r *articleRepository) AllByStatus(status, ownerID string) ([]*model.Article, error) {
	query := r.db.Where("approval_status = ?", status)
	if ownerID != "" {
		query = query.Where("user_id = ?", ownerID)
	}
	var articles []*model.Article
	if err := query.Order("created_at DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to export articles: %w", err)
	}
	return articles, nil
}

func (r *articleRepository) Transition(id, expected, next string) error {
	res := r.db.Model(&model.Article{}).
		Where("id = ? AND approval_status = ?", id, expected).
		Updates(map[string]interface{}{
			"approval_status": next,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to transition article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.classifyMiss(id)
	}
	r.evict()
	return nil
}

func (r *articleRepository) Resubmit(id, ownerID string, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		updates[k] = v
	}
	updates["approval_status"] = model.StatusUpdated
	updates["updated_at"] = time.Now()

	res := r.db.Model(&model.Article{}).
		Where("id = ? AND user_id = ? AND approval_status = ?", id, ownerID, model.StatusRevision).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to resubmit article: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.classifyMiss(id)
	}
	r.evict()
	return nil
}

// classifyMiss distinguishes a vanished row from a lost race after a
// conditional update matched nothing.
func (r *articleRepository) classifyMiss(id string) error {
	var count int64
	if err := r.db.Model(&model.Article{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to re-check article: %w", err)
	}
	if count == 0 {
		return model.ErrNotFound
	}
	return model.ErrConflict
}
