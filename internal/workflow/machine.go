// Package workflow holds the article approval state machine: a closed
// lookup from (current status, deciding role, decision) to the next
// status. Any combination outside the table is rejected; nothing here
// touches storage.
package workflow

import (
	"github.com/avesovich/reporting-with-rss-news/internal/model"
)

// Decision values accepted from approvers. The caller supplies a binary
// verdict; the deciding role determines which concrete status it maps
// to, so the same verdict advances differently for an administrator
// (toward evaluation) than for an executive (toward final approval).
const (
	DecisionApproved    = "approved"
	DecisionDisapproved = "disapproved"
)

// IsValidDecision reports whether d is one of the two verdict labels.
func IsValidDecision(d string) bool {
	return d == DecisionApproved || d == DecisionDisapproved
}

type transitionKey struct {
	current  string
	role     string
	decision string
}

// transitions is the complete rule set. An executive disapprove of an
// Evaluated article keeps it Evaluated; the article stays with the
// executive rather than returning to the editor.
var transitions = map[transitionKey]string{
	{model.StatusReview, model.RoleAdministrator, DecisionApproved}:     model.StatusEvaluated,
	{model.StatusUpdated, model.RoleAdministrator, DecisionApproved}:    model.StatusEvaluated,
	{model.StatusReview, model.RoleAdministrator, DecisionDisapproved}:  model.StatusRevision,
	{model.StatusUpdated, model.RoleAdministrator, DecisionDisapproved}: model.StatusRevision,
	{model.StatusEvaluated, model.RoleExecutive, DecisionApproved}:      model.StatusApproved,
	{model.StatusEvaluated, model.RoleExecutive, DecisionDisapproved}:   model.StatusEvaluated,
}

// Decide returns the status an article in current moves to when role
// renders decision. Combinations outside the table fail with
// ErrInvalidTransition; only administrators and executives may decide.
func Decide(current, role, decision string) (string, error) {
	if role != model.RoleAdministrator && role != model.RoleExecutive {
		return "", model.ErrForbidden
	}
	if !IsValidDecision(decision) {
		return "", model.ErrInvalidTransition
	}
	next, ok := transitions[transitionKey{current, role, decision}]
	if !ok {
		return "", model.ErrInvalidTransition
	}
	return next, nil
}

// CanResubmit reports whether an article in current may be resubmitted
// by its owning editor. Resubmission is the only transition editors
// hold, and it is legal solely from Revision; the content update that
// carries it lands the article in Updated.
func CanResubmit(current string) bool {
	return current == model.StatusRevision
}

// ResubmitTarget is the status a successful resubmission moves to.
const ResubmitTarget = model.StatusUpdated
