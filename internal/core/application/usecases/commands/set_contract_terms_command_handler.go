package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// SetContractTermsCommandHandler swaps a contract's terms and records one
// CONTRACT_TERMS_UPDATED event that is not tied to any invoice.
type SetContractTermsCommandHandler struct {
	uowFactory ContractUoWFactory
	authorizer ports.Authorizer
	clock      func() time.Time
}

func NewSetContractTermsCommandHandler(
	uowFactory ContractUoWFactory,
	authorizer ports.Authorizer,
	clock func() time.Time,
) SetContractTermsCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return SetContractTermsCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		clock:      clock,
	}
}

func (h SetContractTermsCommandHandler) Handle(ctx context.Context, command SetContractTermsCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	if err := h.authorizer.Authorize(ctx, command.Actor(), ports.ActionManageContract); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	terms := command.Terms()
	if err := uow.ContractTermsRepository().ReplaceTerms(ctx, command.ContractID(), terms); err != nil {
		return err
	}

	codes := make([]string, 0, len(terms))
	for _, t := range terms {
		codes = append(codes, t.TaxonomyCode)
	}
	event := audit.NewEvent(nil, audit.EntityContract, command.ContractID(), audit.EventContractTermsUpdated,
		command.Actor(), h.clock().UTC()).
		WithPayload(map[string]any{"term_count": len(terms), "taxonomy_codes": codes})
	if err := uow.AuditSink().Append(ctx, event); err != nil {
		return errs.NewAuditWriteFailureError(string(event.EventType), err)
	}

	return uow.Commit(ctx)
}
