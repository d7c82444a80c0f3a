// Package postgres provides the GORM unit of work that binds the invoice,
// mapping rule and contract repositories and the audit sink to one transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	inv, err := uow.InvoiceRepository().Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// apply the domain operation
//	if err := uow.InvoiceRepository().Update(ctx, inv); err != nil {
//	    return err
//	}
//	for _, ev := range inv.PendingEvents() {
//	    if err := uow.AuditSink().Append(ctx, ev); err != nil {
//	        return err
//	    }
//	}
//
//	return uow.Commit(ctx)
//
// Each UnitOfWork holds at most one transaction. Goroutines must not share one.
package postgres

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres/auditrepo"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres/contractrepo"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres/invoicerepo"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres/mappingrulerepo"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// Migrate creates or updates every table the billing core writes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&invoicerepo.InvoiceDTO{},
		&invoicerepo.LineItemDTO{},
		&invoicerepo.ExceptionDTO{},
		&mappingrulerepo.MappingRuleDTO{},
		&contractrepo.ContractRateDTO{},
		&auditrepo.AuditEventDTO{},
	)
}

// GormUnitOfWorkFactory creates UnitOfWork instances over one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a fresh unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and records the
// aggregates written through its repositories.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. A second call while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes the transaction. Returns gorm.ErrInvalidTransaction when none is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. Returns gorm.ErrInvalidTransaction when
// none is open, which is the normal outcome of the deferred rollback after a commit.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// InvoiceRepository is bound to the open transaction, or to the pool before Begin.
func (uow *GormUnitOfWork) InvoiceRepository() ports.InvoiceRepository {
	return invoicerepo.NewGormInvoiceRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) MappingRuleRepository() ports.MappingRuleRepository {
	return mappingrulerepo.NewGormMappingRuleRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ContractTermsRepository() ports.ContractTermsRepository {
	return contractrepo.NewGormContractTermsRepository(uow.conn())
}

// AuditSink appends inside the open transaction.
func (uow *GormUnitOfWork) AuditSink() ports.AuditSink {
	return auditrepo.NewGormAuditSink(uow.conn())
}

// TrackAggregate is called by the repositories after every successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount is the number of aggregate writes since the last rollback.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
