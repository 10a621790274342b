package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Denial reasons for scope building. These drive distinct caller-facing
// messages, unlike resolution failures which are never distinguished.
var (
	ErrPersonalKeyOverride   = errors.New("personal keys cannot filter by account")
	ErrNotOrganizationMember = errors.New("target account is not a member of this organization")
)

// ScopeKind determines how a listing query is restricted.
type ScopeKind string

const (
	// ScopeAll places no account restriction on the query.
	ScopeAll ScopeKind = "all"
	// ScopeAccount restricts the query to a single account.
	ScopeAccount ScopeKind = "account"
	// ScopeOrganization restricts the query to every member of an organization.
	ScopeOrganization ScopeKind = "organization"
)

// Scope is a validated query filter for "list resources for an account"
// operations.
type Scope struct {
	Kind      ScopeKind
	AccountID uuid.UUID // set for ScopeAccount
	OrgID     uuid.UUID // set for ScopeOrganization
}

// BuildScope turns an identity plus an optional caller-supplied target
// account into a query scope or a structured denial. targetID is
// uuid.Nil when no override was requested.
//
// With an override, access is decided by CanAccess. Without one, the
// admin organization sees everything, an ordinary organization sees its
// members, and a personal identity sees only itself.
func (a *Authorizer) BuildScope(ctx context.Context, identity Identity, targetID uuid.UUID) (*Scope, error) {
	if targetID != uuid.Nil {
		if !a.CanAccess(ctx, identity.OrgID, targetID) {
			if !identity.IsOrganization() {
				return nil, ErrPersonalKeyOverride
			}
			return nil, ErrNotOrganizationMember
		}
		return &Scope{Kind: ScopeAccount, AccountID: targetID}, nil
	}

	if identity.OrgID == a.adminOrgID && identity.IsOrganization() {
		return &Scope{Kind: ScopeAll}, nil
	}

	if identity.IsOrganization() {
		return &Scope{Kind: ScopeOrganization, OrgID: identity.OrgID}, nil
	}

	return &Scope{Kind: ScopeAccount, AccountID: identity.AccountID}, nil
}
