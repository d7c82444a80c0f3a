package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
)

// Action is a permission checked before a command runs.
type Action string

const (
	ActionCreateInvoice    Action = "invoice.create"
	ActionSubmitInvoice    Action = "invoice.submit"
	ActionWithdrawInvoice  Action = "invoice.withdraw"
	ActionRunValidation    Action = "invoice.validate"
	ActionOpenForReview    Action = "invoice.review"
	ActionApproveInvoice   Action = "invoice.approve"
	ActionRequestChanges   Action = "invoice.request_changes"
	ActionDisputeInvoice   Action = "invoice.dispute"
	ActionExportInvoice    Action = "invoice.export"
	ActionRespondException Action = "exception.respond"
	ActionResolveException Action = "exception.resolve"
	ActionOverrideMapping  Action = "mapping.override"
	ActionManageContract   Action = "contract.manage"
)

func (a Action) String() string {
	return string(a)
}

// Authorizer decides role permissions. It returns errs.UnauthorizedError when
// actor may not perform action. Ownership of a specific invoice is checked by the aggregate.
type Authorizer interface {
	Authorize(ctx context.Context, actor kernel.Actor, action Action) error
}
