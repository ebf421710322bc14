// Package rbac decides, per request, whether an actor may perform an
// action on a resource kind. Policies are composed of small rules that
// are ANDed together; the first failing rule decides the outcome.
package rbac

import (
	"fmt"

	"reviewhub/internal/httpapi/apperr"
)

// Role is the closed set of roles a confirmed user can hold.
type Role int

const (
	RoleUser Role = iota
	RoleModerator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}

// ParseRole maps a stored or submitted role string onto the enum.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "moderator":
		return RoleModerator, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleUser, fmt.Errorf("unknown role %q", s)
}

// Actor is the caller identity as resolved from the bearer token.
// The zero value is the anonymous actor.
type Actor struct {
	UserID        string
	Role          Role
	Superuser     bool
	Authenticated bool
}

// Action is the http-verb-equivalent plus whether the actor owns the
// targeted resource (is the profile's user, the review's author, ...).
type Action struct {
	Verb string
	Own  bool
}

// Resource kinds with distinct policies.
type Resource int

const (
	ResourceUserAdmin Resource = iota
	ResourceUserSelf
	ResourceCatalog
	ResourceReview
	ResourceComment
)

type rule func(Actor, Action) error

var policies = map[Resource][]rule{
	ResourceUserAdmin: {authenticated, adminOnly},
	ResourceUserSelf:  {authenticated, selfOrAdmin},
	ResourceCatalog:   {adminOrReadOnly},
	ResourceReview:    {authenticatedOrReadOnly, authorCanPatch, moderatorCanDelete},
	ResourceComment:   {authenticatedOrReadOnly, authorCanPatch, moderatorCanDelete},
}

// Authorize returns nil to allow, or an apperr error describing the
// denial. Every rule of the resource's policy must pass.
func Authorize(actor Actor, action Action, resource Resource) error {
	rules, ok := policies[resource]
	if !ok {
		return apperr.Forbiddenf("no policy for resource")
	}
	for _, r := range rules {
		if err := r(actor, action); err != nil {
			return err
		}
	}
	return nil
}

func isSafe(verb string) bool {
	switch verb {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

func authenticated(actor Actor, _ Action) error {
	if !actor.Authenticated {
		return apperr.Unauthenticatedf("credentials were not provided")
	}
	return nil
}

func adminOnly(actor Actor, _ Action) error {
	if actor.Role == RoleAdmin || actor.Superuser {
		return nil
	}
	return apperr.Forbiddenf("admin access required")
}

func selfOrAdmin(actor Actor, action Action) error {
	if actor.Role == RoleAdmin || actor.Superuser || action.Own {
		return nil
	}
	return apperr.Forbiddenf("not your profile")
}

// adminOrReadOnly denies anonymous writers instead of demanding
// authentication: a missing role is a plain deny here.
func adminOrReadOnly(actor Actor, action Action) error {
	if isSafe(action.Verb) {
		return nil
	}
	if actor.Authenticated && (actor.Role == RoleAdmin || actor.Superuser) {
		return nil
	}
	return apperr.Forbiddenf("admin access required")
}

func authenticatedOrReadOnly(actor Actor, action Action) error {
	if isSafe(action.Verb) {
		return nil
	}
	if !actor.Authenticated {
		return apperr.Unauthenticatedf("credentials were not provided")
	}
	return nil
}

// authorCanPatch restricts partial updates to the author. Intentionally
// narrow: admins and moderators get no author-edit exception.
func authorCanPatch(actor Actor, action Action) error {
	if action.Verb != "PATCH" {
		return nil
	}
	if action.Own {
		return nil
	}
	return apperr.Forbiddenf("only the author may edit")
}

// moderatorCanDelete passes only role=moderator. Admins and authors are
// excluded on purpose: removal of user content is a moderation task.
func moderatorCanDelete(actor Actor, action Action) error {
	if action.Verb != "DELETE" {
		return nil
	}
	if actor.Role == RoleModerator {
		return nil
	}
	return apperr.Forbiddenf("moderator access required")
}
