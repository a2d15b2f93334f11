// Package policy decides whether a principal may perform an action on an
// entity. Decisions are pure functions of the principal, the action and the
// ownership data of the target; nothing here touches storage.
package policy

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindPlace   Kind = "place"
	KindReview  Kind = "review"
	KindAmenity Kind = "amenity"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"
)

// Fields a user may change on their own record without admin rights.
var selfEditableUserFields = map[string]struct{}{
	"first_name": {},
	"last_name":  {},
}

// Principal is the acting identity. The zero value is anonymous.
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func Anonymous() Principal {
	return Principal{}
}

func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}

// Role labels the principal for logs and metrics.
func (p Principal) Role() string {
	switch {
	case p.IsAnonymous():
		return RoleAnonymous
	case p.IsAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Target carries the ownership facts of the record being acted upon.
type Target struct {
	// ID is the record id; for users it is compared against the caller.
	ID uuid.UUID
	// OwnerID is the owner (place), author (review) or creator (amenity) of
	// an existing record. uuid.Nil means nobody owns it.
	OwnerID uuid.UUID
	// ClaimedOwnerID is the owner_id/user_id a caller supplied on create.
	ClaimedOwnerID *uuid.UUID
	// Fields lists the attributes an update intends to change.
	Fields []string
	// Elevated marks the privileged admission path for users.
	Elevated bool
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed         bool
	Unauthenticated bool
	Reason          string
}

// Err converts a denial into the matching typed error; nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Unauthenticated:
		return pkgerrors.Unauthenticated(d.Reason)
	default:
		return pkgerrors.Forbidden(d.Reason)
	}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

func requireLogin() Decision {
	return Decision{Unauthenticated: true, Reason: "authentication required"}
}

// Authorize applies the access rules for kind/action. Admins pass every
// ownership check; anonymous callers only pass public operations.
func Authorize(p Principal, kind Kind, action Action, t Target) Decision {
	if action == ActionRead {
		return allow()
	}

	switch kind {
	case KindUser:
		return authorizeUser(p, action, t)
	case KindPlace, KindReview, KindAmenity:
		return authorizeOwned(p, kind, action, t)
	default:
		return deny(fmt.Sprintf("unknown entity kind %q", kind))
	}
}

func authorizeUser(p Principal, action Action, t Target) Decision {
	switch action {
	case ActionCreate:
		if !t.Elevated {
			return allow()
		}
		if p.IsAnonymous() {
			return requireLogin()
		}
		if !p.IsAdmin {
			return deny("admin privileges required")
		}
		return allow()
	case ActionUpdate:
		if p.IsAnonymous() {
			return requireLogin()
		}
		if p.IsAdmin {
			return allow()
		}
		if p.UserID != t.ID {
			return deny("you can only modify your own account")
		}
		for _, field := range t.Fields {
			if _, ok := selfEditableUserFields[field]; !ok {
				return deny(fmt.Sprintf("you cannot modify %s", field))
			}
		}
		return allow()
	case ActionDelete:
		if p.IsAnonymous() {
			return requireLogin()
		}
		if !p.IsAdmin {
			return deny("admin privileges required")
		}
		return allow()
	}
	return deny(fmt.Sprintf("unsupported action %q", action))
}

func authorizeOwned(p Principal, kind Kind, action Action, t Target) Decision {
	if p.IsAnonymous() {
		return requireLogin()
	}

	switch action {
	case ActionCreate:
		if t.ClaimedOwnerID != nil && *t.ClaimedOwnerID != p.UserID && !p.IsAdmin {
			return deny(fmt.Sprintf("%s must reference your own user id", ownerField(kind)))
		}
		return allow()
	case ActionUpdate, ActionDelete:
		if p.IsAdmin {
			return allow()
		}
		if t.OwnerID == uuid.Nil || t.OwnerID != p.UserID {
			return deny(fmt.Sprintf("only the %s or an admin may %s this %s", ownerNoun(kind), action, kind))
		}
		return allow()
	}
	return deny(fmt.Sprintf("unsupported action %q", action))
}

func ownerField(kind Kind) string {
	if kind == KindReview {
		return "user_id"
	}
	return "owner_id"
}

func ownerNoun(kind Kind) string {
	switch kind {
	case KindReview:
		return "author"
	case KindAmenity:
		return "creator"
	default:
		return "owner"
	}
}
