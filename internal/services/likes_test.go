package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/anonto42/celebration-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeScenario(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	bob := env.CreateUser(t, "bob")

	post, err := env.Board.CreatePost(ctx, alice, services.PostInput{Title: "Hello", Content: "Hello world content"}, nil)
	require.NoError(t, err)

	res, err := env.Board.ToggleLike(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, int64(1), env.Count(t, &models.Notification{}, "user_id = ? AND type = ?", alice.ID, models.NotificationLike))

	res, err = env.Board.ToggleLike(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.Count)
	assert.Equal(t, int64(1), env.Count(t, &models.Notification{}, "user_id = ? AND type = ?", alice.ID, models.NotificationLike))

	// every successful like notifies again
	_, err = env.Board.ToggleLike(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), env.Count(t, &models.Notification{}, "user_id = ? AND type = ?", alice.ID, models.NotificationLike))
}

func TestToggleLikeOwnPostDoesNotNotify(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	post := env.CreatePost(t, alice, "Hello")

	res, err := env.Board.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(0), env.Count(t, &models.Notification{}, "user_id = ?", alice.ID))
}

func TestToggleLikeMissingPost(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.CreateUser(t, "alice")

	_, err := env.Board.ToggleLike(context.Background(), 777, alice)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, int64(0), env.Count(t, &models.Like{}, ""))
}

func TestToggleLikeTwiceRestoresCount(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	post := env.CreatePost(t, alice, "Hello")

	others := []*models.User{env.CreateUser(t, "bob"), env.CreateUser(t, "carol")}
	for _, u := range others {
		_, err := env.Board.ToggleLike(ctx, post.ID, u)
		require.NoError(t, err)
	}

	for _, u := range append(others, alice) {
		before, err := env.Repos.Likes.GetLikesCountByPostID(ctx, post.ID)
		require.NoError(t, err)

		_, err = env.Board.ToggleLike(ctx, post.ID, u)
		require.NoError(t, err)
		res, err := env.Board.ToggleLike(ctx, post.ID, u)
		require.NoError(t, err)

		assert.Equal(t, before, res.Count)
		assert.LessOrEqual(t, env.Count(t, &models.Like{}, "post_id = ? AND user_id = ?", post.ID, u.ID), int64(1))
	}
}

func TestConcurrentToggleLike(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	bob := env.CreateUser(t, "bob")
	post := env.CreatePost(t, alice, "Hello")

	const toggles = 9
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Board.ToggleLike(ctx, post.ID, bob)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// an odd number of toggles leaves exactly one like
	assert.Equal(t, int64(1), env.Count(t, &models.Like{}, "post_id = ? AND user_id = ?", post.ID, bob.ID))
	detail, err := env.Board.GetPost(ctx, post.ID, bob)
	require.NoError(t, err)
	assert.True(t, detail.Liked)
	assert.Equal(t, int64(1), detail.Post.LikeCount)
}

func TestLikeUniqueIndex(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "alice")
	post := env.CreatePost(t, alice, "Hello")

	created, err := env.Repos.Likes.CreateLike(ctx, &models.Like{PostID: post.ID, UserID: alice.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.Repos.Likes.CreateLike(ctx, &models.Like{PostID: post.ID, UserID: alice.ID})
	require.NoError(t, err)
	assert.False(t, created)

	require.Error(t, env.DB.Exec("INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)", alice.ID, post.ID).Error)
}
