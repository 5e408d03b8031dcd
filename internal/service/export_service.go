package service

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/utils"
)

// exportHeader is the fixed CSV column order.
var exportHeader = []string{
	"ID",
	"Title",
	"Publication Date",
	"Type of Report",
	"URL",
	"Editor Name",
	"Detailed Summary",
	"Analysis",
	"Recommendation",
	"Approval Status",
	"Created At",
	"Updated At",
}

// ExportService streams status-filtered reports as CSV.
type ExportService interface {
	// ExportCSV writes every report in the given status to w. Editors
	// export only their own rows. Cell values that a spreadsheet would
	// execute as formulas are neutralized.
	ExportCSV(actor *policy.Actor, status string, w io.Writer) error
}

type exportService struct {
	articles repository.ArticleRepository
	policy   *policy.Policy
}

// NewExportService creates the service.
func NewExportService(articles repository.ArticleRepository, pol *policy.Policy) ExportService {
	return &exportService{articles: articles, policy: pol}
}

func (s *exportService) ExportCSV(actor *policy.Actor, status string, w io.Writer) error {
	if !model.IsValidStatus(status) {
		return model.ErrNotFound
	}
	if err := s.policy.CanExport(actor.ID, status); err != nil {
		return err
	}

	ownerID := ""
	ownerOnly, err := s.policy.ListOwnerOnly(actor.ID)
	if err != nil {
		return err
	}
	if ownerOnly {
		ownerID = actor.ID
	}

	articles, err := s.articles.AllByStatus(status, ownerID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, a := range articles {
		row := []string{
			a.ID,
			a.Title,
			a.PublicationDate,
			a.TypeOfReport,
			a.URL,
			a.EditorName,
			a.DetailedSummary,
			a.Analysis,
			a.Recommendation,
			a.ApprovalStatus,
			a.CreatedAt.Format("2006-01-02 15:04:05"),
			a.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		for i, cell := range row {
			row[i] = utils.NeutralizeFormula(cell)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
