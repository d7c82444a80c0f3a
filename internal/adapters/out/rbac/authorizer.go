// Package rbac decides which role may run which command, using an in-memory
// casbin enforcer seeded with the billing policy.
package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

const modelText = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

// CasbinAuthorizer implements ports.Authorizer.
type CasbinAuthorizer struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.Logger
}

// NewEnforcer builds the enforcer with the seeded policy.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewCasbinAuthorizer(enforcer *casbin.SyncedEnforcer, log *zap.Logger) *CasbinAuthorizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CasbinAuthorizer{
		enforcer: enforcer,
		log:      log.Named("rbac"),
	}
}

func (a *CasbinAuthorizer) Authorize(_ context.Context, actor kernel.Actor, action ports.Action) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	allowed, err := a.enforcer.Enforce(subject(actor.Role()), action.String())
	if err != nil {
		return errs.NewUnauthorizedErrorWithCause(actor.Role().String(), action.String(), err)
	}
	if !allowed {
		a.log.Debug("authorization denied",
			zap.String("role", actor.Role().String()),
			zap.String("actor", actor.ID()),
			zap.String("action", action.String()),
		)
		return errs.NewUnauthorizedError(actor.Role().String(), action.String())
	}
	return nil
}

func subject(role kernel.Role) string {
	return fmt.Sprintf("role:%s", strings.ToLower(role.String()))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Supplier
		{"role:supplier", ports.ActionCreateInvoice.String()},
		{"role:supplier", ports.ActionSubmitInvoice.String()},
		{"role:supplier", ports.ActionWithdrawInvoice.String()},
		{"role:supplier", ports.ActionRespondException.String()},

		// Carrier reviewer
		{"role:carrier", ports.ActionOpenForReview.String()},
		{"role:carrier", ports.ActionApproveInvoice.String()},
		{"role:carrier", ports.ActionRequestChanges.String()},
		{"role:carrier", ports.ActionDisputeInvoice.String()},
		{"role:carrier", ports.ActionExportInvoice.String()},
		{"role:carrier", ports.ActionResolveException.String()},

		// Carrier administrator, on top of the carrier grants
		{"role:admin", ports.ActionOverrideMapping.String()},
		{"role:admin", ports.ActionManageContract.String()},
		{"role:admin", ports.ActionRunValidation.String()},

		// Background jobs and intake
		{"role:system", ports.ActionRunValidation.String()},
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return err
	}

	_, err := enforcer.AddGroupingPolicy("role:admin", "role:carrier")
	return err
}
