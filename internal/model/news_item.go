package model

import (
	"time"
)

// NewsItem is an aggregated entry from one of the external RSS feeds.
// Items are upserted keyed by link, so refetching a feed is idempotent.
type NewsItem struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title       string    `gorm:"type:varchar(512);not null" json:"title"`
	Link        string    `gorm:"type:varchar(2083);not null;uniqueIndex" json:"link"`
	Description string    `gorm:"type:text" json:"description"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	Author      string    `gorm:"type:varchar(255)" json:"author"`
	Category    string    `gorm:"type:varchar(255)" json:"category"`
	Image       string    `gorm:"type:varchar(2083)" json:"image"`
	Source      string    `gorm:"type:varchar(64);not null;index" json:"source"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (NewsItem) TableName() string {
	return "news_rss"
}
