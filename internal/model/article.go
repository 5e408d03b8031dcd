package model

import (
	"time"
)

// Approval status values. An article is created in Review and only the
// workflow package may move it between statuses.
const (
	StatusReview    = "Review"
	StatusUpdated   = "Updated"
	StatusRevision  = "Revision"
	StatusEvaluated = "Evaluated"
	StatusApproved  = "Approved"
)

// ValidStatuses lists every legal approval status, in workflow order.
var ValidStatuses = []string{
	StatusReview,
	StatusUpdated,
	StatusRevision,
	StatusEvaluated,
	StatusApproved,
}

// ReportTypes is the closed set of accepted type_of_report values.
var ReportTypes = []string{
	"Breach",
	"Data Leak",
	"Malware Information",
	"Threat Actors Updates",
	"Cyber Awareness",
	"Vulnerability Exploitation",
	"Phishing",
	"Ransomware",
	"Social Engineering",
	"Illegal Access",
}

// Article is a cybersecurity report moving through the approval workflow.
type Article struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID          string    `gorm:"type:varchar(64);not null;index" json:"user_id"` // owning editor, immutable after creation
	EditorName      string    `gorm:"type:varchar(255)" json:"editor_name"`
	Title           string    `gorm:"type:varchar(255);not null" json:"title"`
	TypeOfReport    string    `gorm:"type:varchar(64);not null;index" json:"type_of_report"`
	PublicationDate string    `gorm:"type:varchar(10);not null" json:"publication_date"`
	URL             string    `gorm:"type:varchar(2083);not null" json:"url"`
	DetailedSummary string    `gorm:"type:text;not null" json:"detailed_summary"`
	Analysis        string    `gorm:"type:text;not null" json:"analysis"`
	Recommendation  string    `gorm:"type:text;not null" json:"recommendation"`
	ImagePaths      string    `gorm:"type:text" json:"image_paths"` // JSON array of stored image names
	ApprovalStatus  string    `gorm:"type:varchar(32);not null;index" json:"approval_status"`
	PostedDate      string    `gorm:"type:varchar(10)" json:"posted_date"`
	TimePosted      string    `gorm:"type:varchar(8)" json:"time_posted"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Article) TableName() string {
	return "articles"
}

// IsValidStatus reports whether s is one of the five approval statuses.
// The match is case-sensitive: status path segments must be exact.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidReportType reports whether t is one of the accepted report types.
func IsValidReportType(t string) bool {
	for _, v := range ReportTypes {
		if v == t {
			return true
		}
	}
	return false
}
