package service_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type exportEnv struct {
	db       *gorm.DB
	articles repository.ArticleRepository
	export   service.ExportService
}

func newExportEnv(t *testing.T) *exportEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Article{}))

	oracle := auth.NewDBRoleOracle(db, time.Minute)
	articles := repository.NewArticleRepository(db, nil)
	return &exportEnv{
		db:       db,
		articles: articles,
		export:   service.NewExportService(articles, policy.New(oracle)),
	}
}

func (e *exportEnv) seedActor(t *testing.T, name, role string) *policy.Actor {
	t.Helper()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return &policy.Actor{ID: user.ID, Name: user.Name, Role: user.Role}
}

func (e *exportEnv) seedArticle(t *testing.T, owner, title, status string) {
	t.Helper()
	require.NoError(t, e.articles.Create(&model.Article{
		ID:              uuid.NewString(),
		UserID:          owner,
		EditorName:      "Eli",
		Title:           title,
		TypeOfReport:    "Ransomware",
		PublicationDate: "2026-02-11",
		URL:             "https://example.com/report",
		DetailedSummary: "summary",
		Analysis:        "analysis",
		Recommendation:  "recommendation",
		ApprovalStatus:  status,
	}))
}

func TestExportService_CSVLayout(t *testing.T) {
	env := newExportEnv(t)
	admin := env.seedActor(t, "admin", model.RoleAdministrator)
	env.seedArticle(t, "editor-1", "Ransomware hits hospital", model.StatusApproved)

	var buf bytes.Buffer
	require.NoError(t, env.export.ExportCSV(admin, model.StatusApproved, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, []string{
		"ID", "Title", "Publication Date", "Type of Report", "URL",
		"Editor Name", "Detailed Summary", "Analysis", "Recommendation",
		"Approval Status", "Created At", "Updated At",
	}, header)
	assert.Equal(t, "Ransomware hits hospital", records[1][1])
	assert.Equal(t, model.StatusApproved, records[1][9])
}

// Cells starting with formula characters are prefixed so a spreadsheet
// treats them as text.
func TestExportService_NeutralizesFormulas(t *testing.T) {
	env := newExportEnv(t)
	admin := env.seedActor(t, "admin", model.RoleAdministrator)
	env.seedArticle(t, "editor-1", "=SUM(A1:A9)", model.StatusApproved)

	var buf bytes.Buffer
	require.NoError(t, env.export.ExportCSV(admin, model.StatusApproved, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "'=SUM(A1:A9)", records[1][1])
	assert.False(t, strings.HasPrefix(records[1][1], "="))
}

func TestExportService_EditorScopedToOwnRows(t *testing.T) {
	env := newExportEnv(t)
	editor := env.seedActor(t, "editor", model.RoleEditor)
	env.seedArticle(t, editor.ID, "mine", model.StatusApproved)
	env.seedArticle(t, "someone-else", "theirs", model.StatusApproved)

	var buf bytes.Buffer
	require.NoError(t, env.export.ExportCSV(editor, model.StatusApproved, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus the editor's own row")
	assert.Equal(t, "mine", records[1][1])
}

func TestExportService_Denials(t *testing.T) {
	env := newExportEnv(t)
	exec := env.seedActor(t, "exec", model.RoleExecutive)
	admin := env.seedActor(t, "admin", model.RoleAdministrator)

	var buf bytes.Buffer
	err := env.export.ExportCSV(exec, model.StatusReview, &buf)
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = env.export.ExportCSV(admin, "Pending", &buf)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
