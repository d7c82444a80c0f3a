package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
)

// InvoiceLocker serializes mutations of one invoice. Lock blocks until the lock
// is held or ctx is done; the returned func releases it and is safe to call once.
type InvoiceLocker interface {
	Lock(ctx context.Context, invoiceID kernel.UUID) (unlock func(), err error)
}
