package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
)

// AuditSink is append-only. An error from Append aborts the surrounding mutation.
type AuditSink interface {
	Append(ctx context.Context, event audit.Event) error
}
