package model

import (
	"time"
)

// MaxCommentLength bounds sanitized comment text.
const MaxCommentLength = 1000

// Comment is reviewer feedback attached to an article. Text is sanitized
// before storage and never contains markup.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ArticleID string    `gorm:"type:varchar(64);not null;index" json:"article_id"`
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Comment   string    `gorm:"type:varchar(1000);not null" json:"comment"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}
