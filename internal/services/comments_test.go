package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	bob := env.CreateUser(t, "bob")
	post := env.CreatePost(t, alice, "Hello")

	comment, err := env.Board.AddComment(ctx, post.ID, bob, "  Well done!  ")
	require.NoError(t, err)
	assert.Equal(t, "Well done!", comment.Content)
	assert.Equal(t, bob.ID, comment.UserID)

	var note models.Notification
	require.NoError(t, env.DB.Where("user_id = ? AND type = ?", alice.ID, models.NotificationComment).First(&note).Error)
	assert.Contains(t, note.Content, bob.Username)
	assert.False(t, note.IsRead)

	_, err = env.Board.AddComment(ctx, post.ID, alice, "Thanks!")
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.Count(t, &models.Notification{}, "user_id = ?", alice.ID))
}

func TestAddCommentValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	post := env.CreatePost(t, alice, "Hello")
	limit := env.Board.CommentMaxLength()

	for _, content := range []string{"", "   \n\t", strings.Repeat("x", limit+1)} {
		_, err := env.Board.AddComment(ctx, post.ID, alice, content)
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "content")
	}

	_, err := env.Board.AddComment(ctx, post.ID, alice, strings.Repeat("ü", limit))
	assert.NoError(t, err)

	_, err = env.Board.AddComment(ctx, 31337, alice, "Anyone here?")
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, int64(1), env.Count(t, &models.Comment{}, ""))
}
