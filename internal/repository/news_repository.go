package repository

import (
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsFilter narrows aggregated news listings.
type NewsFilter struct {
	Source   string
	Search   string // matches title or description
	From     *time.Time
	To       *time.Time
	Sort     string // "newest" (default) or "oldest"
	Page     int
	PageSize int
}

// NewsRepository persists aggregated RSS items.
type NewsRepository interface {
	// Upsert inserts or refreshes an item keyed by link, so refetching
	// a feed never duplicates rows.
	Upsert(item *model.NewsItem) error
	List(filter *NewsFilter) ([]*model.NewsItem, int64, error)
	Sources() ([]string, error)
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository creates the repository.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Upsert(item *model.NewsItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "link"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "pub_date", "author", "category", "image", "source", "updated_at",
		}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert news item: %w", err)
	}
	return nil
}

func (r *newsRepository) List(filter *NewsFilter) ([]*model.NewsItem, int64, error) {
	query := r.db.Model(&model.NewsItem{})
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filter.From != nil && filter.To != nil {
		query = query.Where("pub_date BETWEEN ? AND ?", *filter.From, *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count news items: %w", err)
	}

	order := "pub_date DESC"
	if filter.Sort == "oldest" {
		order = "pub_date ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 9
	}

	var items []*model.NewsItem
	err := query.Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news items: %w", err)
	}
	return items, total, nil
}

func (r *newsRepository) Sources() ([]string, error) {
	var sources []string
	err := r.db.Model(&model.NewsItem{}).
		Distinct("source").
		Order("source ASC").
		Pluck("source", &sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list news sources: %w", err)
	}
	return sources, nil
}
