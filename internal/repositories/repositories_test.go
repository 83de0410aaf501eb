package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/repositories"
	"github.com/anonto42/celebration-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	repos *repositories.Repositories
	users map[string]*models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repos: repositories.New(testutil.SetupTestDB(t)),
		users: map[string]*models.User{},
	}
	for _, dept := range []string{"engineering", "sales"} {
		u := &models.User{
			Username:     dept + "_user",
			Email:        dept + "@board.test",
			Department:   dept,
			JobTitle:     "Member",
			PasswordHash: "x",
		}
		require.NoError(t, f.repos.Users.CreateUser(context.Background(), u))
		f.users[dept] = u
	}
	return f
}

func (f *fixture) post(t *testing.T, author *models.User, title, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: content, UserID: author.ID, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, f.repos.Posts.CreatePost(context.Background(), p))
	return p
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := f.post(t, f.users["engineering"], "Release shipped", "The team shipped 2.0 on time", base)
	second := f.post(t, f.users["sales"], "Quarter closed", "Sales hit 100% of target", base.Add(time.Hour))
	f.post(t, f.users["engineering"], "Hackathon win", "First_place at the spring hackathon", base.Add(2*time.Hour))

	for _, uid := range []uint{f.users["engineering"].ID, f.users["sales"].ID} {
		created, err := f.repos.Likes.CreateLike(ctx, &models.Like{UserID: uid, PostID: first.ID})
		require.NoError(t, err)
		require.True(t, created)
	}
	created, err := f.repos.Likes.CreateLike(ctx, &models.Like{UserID: f.users["sales"].ID, PostID: second.ID})
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, f.repos.Comments.CreateComment(ctx, &models.Comment{PostID: second.ID, UserID: f.users["engineering"].ID, Content: "Congrats"}))

	tests := []struct {
		name   string
		filter repositories.PostFilter
		want   []string
	}{
		{"newest first by default", repositories.PostFilter{}, []string{"Hackathon win", "Quarter closed", "Release shipped"}},
		{"oldest first", repositories.PostFilter{Sort: repositories.SortOldest}, []string{"Release shipped", "Quarter closed", "Hackathon win"}},
		{"most liked", repositories.PostFilter{Sort: repositories.SortMostLiked}, []string{"Release shipped", "Quarter closed", "Hackathon win"}},
		{"department", repositories.PostFilter{Department: "engineering"}, []string{"Hackathon win", "Release shipped"}},
		{"search is case-insensitive", repositories.PostFilter{Search: "QUARTER"}, []string{"Quarter closed"}},
		{"search matches content", repositories.PostFilter{Search: "shipped 2.0"}, []string{"Release shipped"}},
		{"percent is literal", repositories.PostFilter{Search: "100%"}, []string{"Quarter closed"}},
		{"underscore is literal", repositories.PostFilter{Search: "first_place"}, []string{"Hackathon win"}},
		{"no match", repositories.PostFilter{Search: "payroll"}, []string{}},
		{"limit", repositories.PostFilter{Limit: 1}, []string{"Hackathon win"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := f.repos.Posts.ListPosts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(posts))
		})
	}

	posts, err := f.repos.Posts.ListPosts(ctx, repositories.PostFilter{Sort: repositories.SortOldest})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.EqualValues(t, 2, posts[0].LikeCount)
	assert.EqualValues(t, 1, posts[1].CommentCount)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "engineering_user", posts[0].User.Username)
}

func TestCreateLikeConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.post(t, f.users["sales"], "Quarter closed", "Sales hit the target", time.Now())
	uid := f.users["engineering"].ID

	created, err := f.repos.Likes.CreateLike(ctx, &models.Like{UserID: uid, PostID: p.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.repos.Likes.CreateLike(ctx, &models.Like{UserID: uid, PostID: p.ID})
	require.NoError(t, err)
	assert.False(t, created)

	liked, err := f.repos.Likes.HasUserLikedPost(ctx, p.ID, uid)
	require.NoError(t, err)
	assert.True(t, liked)

	removed, err := f.repos.Likes.DeleteLike(ctx, p.ID, uid)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.repos.Likes.DeleteLike(ctx, p.ID, uid)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUpdateAndDeleteMissingPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.repos.Posts.UpdatePost(ctx, &models.Post{ID: 999, Title: "Missing", Content: "Nothing here"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.repos.Posts.DeletePost(ctx, 999), gorm.ErrRecordNotFound)
}

func TestUpdatePostKeepsOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.post(t, f.users["sales"], "Quarter closed", "Sales hit the target", time.Now())

	p.Title = "Quarter closed early"
	p.UserID = f.users["engineering"].ID
	require.NoError(t, f.repos.Posts.UpdatePost(ctx, p))

	got, err := f.repos.Posts.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quarter closed early", got.Title)
	assert.Equal(t, f.users["sales"].ID, got.UserID)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("boom")

	err := f.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		for i := 0; i < 2; i++ {
			n := &models.Notification{UserID: f.users["sales"].ID, Content: fmt.Sprintf("note %d", i)}
			if err := tx.Notifications.CreateNotification(ctx, n); err != nil {
				return err
			}
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := f.repos.Notifications.GetUnreadCount(ctx, f.users["sales"].ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAsReadScopedToRecipient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sales, eng := f.users["sales"].ID, f.users["engineering"].ID

	mine := &models.Notification{UserID: sales, Content: "hello"}
	theirs := &models.Notification{UserID: eng, Content: "hi"}
	require.NoError(t, f.repos.Notifications.CreateNotification(ctx, mine))
	require.NoError(t, f.repos.Notifications.CreateNotification(ctx, theirs))
	assert.Equal(t, models.NotificationGeneric, mine.Type)

	require.NoError(t, f.repos.Notifications.MarkAsRead(ctx, sales, []uint{mine.ID, theirs.ID}))

	count, err := f.repos.Notifications.GetUnreadCount(ctx, sales)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = f.repos.Notifications.GetUnreadCount(ctx, eng)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSessionsDeleteExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now()
	uid := f.users["sales"].ID

	require.NoError(t, f.repos.Sessions.CreateSession(ctx, &models.Session{ID: "old", UserID: uid, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, f.repos.Sessions.CreateSession(ctx, &models.Session{ID: "live", UserID: uid, ExpiresAt: now.Add(time.Hour)}))

	n, err := f.repos.Sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = f.repos.Sessions.GetSession(ctx, "old")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = f.repos.Sessions.GetSession(ctx, "live")
	assert.NoError(t, err)
}
