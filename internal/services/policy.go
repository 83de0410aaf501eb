package services

import (
	"strings"

	"github.com/anonto42/celebration-board/internal/models"
)

// Action names an operation guarded by the Policy.
type Action string

const (
	ActionEditPost    Action = "edit_post"
	ActionDeletePost  Action = "delete_post"
	ActionListUsers   Action = "list_users"
	ActionToggleAdmin Action = "toggle_admin"
)

// Policy is the single authorization decision point of the board.
type Policy struct {
	superAdminEmail string
}

func NewPolicy(superAdminEmail string) *Policy {
	return &Policy{superAdminEmail: strings.TrimSpace(superAdminEmail)}
}

// IsSuperAdmin reports whether u is the configured super-admin account.
func (p *Policy) IsSuperAdmin(u *models.User) bool {
	return u != nil && p.superAdminEmail != "" && strings.EqualFold(u.Email, p.superAdminEmail)
}

// IsAdmin reports whether u holds admin rights.
func (p *Policy) IsAdmin(u *models.User) bool {
	return u != nil && (u.IsAdmin || p.IsSuperAdmin(u))
}

// Authorize decides whether actor may perform action on target.
// Targets: *models.Post for post actions, *models.User (or nil) for admin actions.
func (p *Policy) Authorize(actor *models.User, action Action, target any) error {
	if actor == nil {
		return ErrForbidden
	}
	switch action {
	case ActionEditPost:
		if post, ok := target.(*models.Post); ok && post.UserID == actor.ID {
			return nil
		}
	case ActionDeletePost:
		if post, ok := target.(*models.Post); ok && (post.UserID == actor.ID || p.IsAdmin(actor)) {
			return nil
		}
	case ActionListUsers:
		if p.IsAdmin(actor) {
			return nil
		}
	case ActionToggleAdmin:
		if !p.IsSuperAdmin(actor) {
			return ErrForbidden
		}
		if user, ok := target.(*models.User); ok && p.IsSuperAdmin(user) {
			return ErrImmutable
		}
		return nil
	}
	return ErrForbidden
}

// Allowed is Authorize as a boolean, for templates.
func (p *Policy) Allowed(actor *models.User, action Action, target any) bool {
	return p.Authorize(actor, action, target) == nil
}
