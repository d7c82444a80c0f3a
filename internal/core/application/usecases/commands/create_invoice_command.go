package commands

import (
	"errors"
	"strings"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrCreateInvoiceCommandIsNotConstructed = errors.New(
	"CreateInvoiceCommand must be created via NewCreateInvoiceCommand constructor",
)

// CreateInvoiceCommand opens a DRAFT invoice for a supplier under a contract.
//
// Example:
//
//	cmd, err := NewCreateInvoiceCommand(actor, kernel.NewUUID(), supplierID, contractID, "INV-1001", invoiceDate)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := handler.Handle(ctx, cmd)
type CreateInvoiceCommand struct { //nolint:recvcheck //using for validation
	actor         kernel.Actor
	invoiceID     kernel.UUID
	supplierID    kernel.UUID
	contractID    kernel.UUID
	invoiceNumber string
	invoiceDate   time.Time

	guard guard.ConstructorGuard
}

func NewCreateInvoiceCommand(
	actor kernel.Actor,
	invoiceID, supplierID, contractID kernel.UUID,
	invoiceNumber string,
	invoiceDate time.Time,
) (CreateInvoiceCommand, error) {
	cmd := CreateInvoiceCommand{
		actor:       actor,
		invoiceDate: invoiceDate,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		actor.Validate(),
		cmd.setIDs(invoiceID, supplierID, contractID),
		cmd.setInvoiceNumber(invoiceNumber),
	); err != nil {
		return CreateInvoiceCommand{}, err
	}

	return cmd, nil
}

func (c CreateInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrCreateInvoiceCommandIsNotConstructed)
}

func (c CreateInvoiceCommand) Actor() kernel.Actor     { return c.actor }
func (c CreateInvoiceCommand) InvoiceID() kernel.UUID  { return c.invoiceID }
func (c CreateInvoiceCommand) SupplierID() kernel.UUID { return c.supplierID }
func (c CreateInvoiceCommand) ContractID() kernel.UUID { return c.contractID }
func (c CreateInvoiceCommand) InvoiceNumber() string   { return c.invoiceNumber }
func (c CreateInvoiceCommand) InvoiceDate() time.Time  { return c.invoiceDate }

func (c *CreateInvoiceCommand) setIDs(invoiceID, supplierID, contractID kernel.UUID) error {
	if err := errors.Join(invoiceID.Validate(), supplierID.Validate(), contractID.Validate()); err != nil {
		return err
	}

	c.invoiceID = invoiceID
	c.supplierID = supplierID
	c.contractID = contractID
	return nil
}

func (c *CreateInvoiceCommand) setInvoiceNumber(n string) error {
	n = strings.TrimSpace(n)
	if n == "" {
		return errs.NewValueIsRequiredError("invoiceNumber")
	}

	c.invoiceNumber = n
	return nil
}
