package services_test

import (
	"testing"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestPolicyAuthorize(t *testing.T) {
	policy := services.NewPolicy("Root@Board.test")
	super := &models.User{ID: 1, Email: "root@board.test", IsAdmin: true}
	admin := &models.User{ID: 2, Email: "admin@board.test", IsAdmin: true}
	author := &models.User{ID: 3, Email: "author@board.test"}
	member := &models.User{ID: 4, Email: "member@board.test"}
	post := &models.Post{ID: 10, UserID: author.ID}

	tests := []struct {
		name   string
		actor  *models.User
		action services.Action
		target any
		want   error
	}{
		{"author edits", author, services.ActionEditPost, post, nil},
		{"admin cannot edit", admin, services.ActionEditPost, post, services.ErrForbidden},
		{"member cannot edit", member, services.ActionEditPost, post, services.ErrForbidden},
		{"author deletes", author, services.ActionDeletePost, post, nil},
		{"admin deletes", admin, services.ActionDeletePost, post, nil},
		{"super deletes", super, services.ActionDeletePost, post, nil},
		{"member cannot delete", member, services.ActionDeletePost, post, services.ErrForbidden},
		{"anonymous", nil, services.ActionDeletePost, post, services.ErrForbidden},
		{"admin lists users", admin, services.ActionListUsers, nil, nil},
		{"member cannot list users", member, services.ActionListUsers, nil, services.ErrForbidden},
		{"super toggles member", super, services.ActionToggleAdmin, member, nil},
		{"super cannot toggle self", super, services.ActionToggleAdmin, super, services.ErrImmutable},
		{"admin cannot toggle", admin, services.ActionToggleAdmin, member, services.ErrForbidden},
		{"unknown action", super, services.Action("explode"), nil, services.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.actor, tt.action, tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, tt.want == nil, policy.Allowed(tt.actor, tt.action, tt.target))
		})
	}
}

func TestSuperAdminByEmailIsAdmin(t *testing.T) {
	policy := services.NewPolicy("root@board.test")
	demoted := &models.User{ID: 1, Email: "ROOT@board.test", IsAdmin: false}

	assert.True(t, policy.IsSuperAdmin(demoted))
	assert.True(t, policy.IsAdmin(demoted))
	assert.False(t, services.NewPolicy("").IsSuperAdmin(&models.User{}))
}
