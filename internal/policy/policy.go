// Package policy authorizes operations by combining role oracle results
// with ownership and article-state constraints. Every denial surfaces
// the same generic Forbidden so callers cannot probe which check failed.
package policy

import (
	"fmt"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
)

// Actor identifies the requesting user to the policy layer.
type Actor struct {
	ID   string
	Name string
	Role string
}

// executiveHidden lists the statuses executives may not read or list.
// Executives only enter the flow once an administrator has evaluated.
var executiveHidden = map[string]bool{
	model.StatusReview:   true,
	model.StatusUpdated:  true,
	model.StatusRevision: true,
}

// Policy evaluates the declarative rule set keyed by operation, role,
// ownership and state.
type Policy struct {
	oracle auth.RoleOracle
}

// New creates a policy layer over the given role oracle.
func New(oracle auth.RoleOracle) *Policy {
	return &Policy{oracle: oracle}
}

func (p *Policy) roleOf(actorID string) (string, error) {
	role, err := p.oracle.PrimaryRole(actorID)
	if err != nil {
		if err == model.ErrNotFound {
			return "", model.ErrForbidden
		}
		return "", fmt.Errorf("role lookup failed: %w", err)
	}
	return role, nil
}

// CanListStatus authorizes listing articles in the given status.
func (p *Policy) CanListStatus(actorID, status string) error {
	role, err := p.roleOf(actorID)
	if err != nil {
		return err
	}
	ok, err := p.oracle.HasPermission(actorID, auth.PermViewArticleReport)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	if role == model.RoleExecutive && executiveHidden[status] {
		return model.ErrForbidden
	}
	return nil
}

// ListOwnerOnly reports whether listings (and exports) must be scoped
// to rows the actor owns. Editors never see other editors' articles.
func (p *Policy) ListOwnerOnly(actorID string) (bool, error) {
	return p.oracle.HasRole(actorID, model.RoleEditor)
}

// CanViewArticle authorizes the detail view of one article.
func (p *Policy) CanViewArticle(actorID string, article *model.Article) error {
	role, err := p.roleOf(actorID)
	if err != nil {
		return err
	}
	switch role {
	case model.RoleAdministrator:
		return nil
	case model.RoleExecutive:
		if executiveHidden[article.ApprovalStatus] {
			return model.ErrForbidden
		}
		return nil
	case model.RoleEditor:
		if article.UserID != actorID {
			return model.ErrForbidden
		}
		return nil
	}
	return model.ErrForbidden
}

// CanCreateArticle authorizes report creation: editor role plus the
// explicit create grant.
func (p *Policy) CanCreateArticle(actorID string) error {
	ok, err := p.oracle.HasRole(actorID, model.RoleEditor)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	ok, err = p.oracle.HasPermission(actorID, auth.PermCreateArticleReport)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

// CanUpdateContent authorizes a content update (resubmission). Only the
// owning editor may update, and only while the article sits in
// Revision; everything else is Forbidden regardless of payload.
func (p *Policy) CanUpdateContent(actorID string, article *model.Article) error {
	ok, err := p.oracle.HasRole(actorID, model.RoleEditor)
	if err != nil {
		return err
	}
	if !ok || article.UserID != actorID {
		return model.ErrForbidden
	}
	if article.ApprovalStatus != model.StatusRevision {
		return model.ErrForbidden
	}
	return nil
}

// CanTransition authorizes rendering an approval decision. The state
// machine decides whether the concrete transition is legal.
func (p *Policy) CanTransition(actorID string) error {
	ok, err := p.oracle.HasAnyRole(actorID, model.RoleAdministrator, model.RoleExecutive)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	ok, err = p.oracle.HasPermission(actorID, auth.PermViewArticleReport)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

// CanComment authorizes comment creation. Editors receive feedback,
// they do not write it.
func (p *Policy) CanComment(actorID string) error {
	ok, err := p.oracle.HasAnyRole(actorID, model.RoleAdministrator, model.RoleExecutive)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

// CanExport authorizes the CSV export of a status. Editors export only
// their own rows (see ListOwnerOnly); executives cannot export hidden
// statuses.
func (p *Policy) CanExport(actorID, status string) error {
	ok, err := p.oracle.HasAnyRole(actorID,
		model.RoleAdministrator, model.RoleExecutive, model.RoleEditor)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	role, err := p.roleOf(actorID)
	if err != nil {
		return err
	}
	if role == model.RoleExecutive && executiveHidden[status] {
		return model.ErrForbidden
	}
	return nil
}

// CanManageUsers authorizes account administration.
func (p *Policy) CanManageUsers(actorID string) error {
	ok, err := p.oracle.HasRole(actorID, model.RoleAdministrator)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

// CanUploadImages authorizes attaching images to a report.
func (p *Policy) CanUploadImages(actorID string) error {
	ok, err := p.oracle.HasRole(actorID, model.RoleEditor)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

// CanViewImages authorizes fetching stored article images.
func (p *Policy) CanViewImages(actorID string) error {
	ok, err := p.oracle.HasAnyRole(actorID,
		model.RoleAdministrator, model.RoleEditor, model.RoleExecutive)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
