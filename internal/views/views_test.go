package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/anonto42/celebration-board/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPages(t *testing.T) {
	r, err := New(services.NewPolicy("root@board.test"))
	require.NoError(t, err)

	super := &models.User{ID: 1, Username: "superadmin", Email: "root@board.test", IsAdmin: true, Department: "management"}
	alice := &models.User{ID: 2, Username: "alice", Email: "alice@board.test", Department: "engineering", JobTitle: "Engineer"}
	post := &models.Post{
		ID: 7, Title: "Launch", Content: "We shipped it <b>today</b>", UserID: alice.ID, User: alice,
		FileFilename: "cake.png", FilePath: "20240101-x-cake.png", CreatedAt: time.Now(),
		Comments:  []models.Comment{{ID: 1, Content: "Congrats", User: super, CreatedAt: time.Now()}},
		LikeCount: 3, CommentCount: 1,
	}

	tests := []struct {
		page string
		data Page
		want []string
	}{
		{"login", Page{Form: struct{ Username, Next string }{"alice", "/posts"}, Errors: map[string]string{"form": "Invalid username or password"}},
			[]string{"Invalid username or password", `value="alice"`, `value="/posts"`}},
		{"register", Page{Form: services.RegisterInput{Username: "bob", Department: "sales"}, Errors: map[string]string{"email": "Invalid email address."}},
			[]string{"Invalid email address.", `<option value="sales" selected>Sales</option>`}},
		{"posts", Page{CurrentUser: alice, Unread: 2, Form: services.PostInput{}, Errors: map[string]string{},
			Data: struct {
				Posts []models.Post
				Query services.PostQuery
			}{[]models.Post{*post}, services.PostQuery{Sort: "most_liked"}}},
			[]string{"Notifications (2)", "Launch", "3 likes", `href="/uploads/20240101-x-cake.png"`, `value="most_liked" selected`, "&lt;b&gt;today&lt;/b&gt;"}},
		{"post", Page{CurrentUser: super, Errors: map[string]string{}, Data: struct {
			Post             *models.Post
			Liked            bool
			CommentMaxLength int
		}{post, true, 500}},
			[]string{"Unlike", "Congrats", `name="reason"`, "Manage users", `maxlength="500"`}},
		{"edit", Page{CurrentUser: alice, Form: services.PostInput{Title: "Launch", Content: "body text here"}, Errors: map[string]string{},
			Data: struct{ Post *models.Post }{post}},
			[]string{`action="/posts/7/edit"`, "Current attachment: cake.png"}},
		{"notifications", Page{CurrentUser: alice, Data: []models.Notification{{Content: "bob liked your post", Type: models.NotificationLike, CreatedAt: time.Now()}}},
			[]string{"bob liked your post", "<strong>New</strong>"}},
		{"admin_users", Page{CurrentUser: super, Data: struct {
			Users []*models.User
			Logs  []models.AdminActionLog
		}{[]*models.User{super, alice}, []models.AdminActionLog{{Action: models.AdminActionPromoted, Admin: super, TargetUser: alice}}}},
			[]string{"Super admin", `action="/admin/users/2/toggle"`, "superadmin promoted to admin alice"}},
		{"error", Page{Title: "Forbidden", Data: "Access denied."}, []string{"Forbidden", "Access denied."}},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tt.page, tt.data, nil))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestAdminPageHidesSuperAdminToggle(t *testing.T) {
	r, err := New(services.NewPolicy("root@board.test"))
	require.NoError(t, err)
	super := &models.User{ID: 1, Username: "superadmin", Email: "root@board.test", IsAdmin: true}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "admin_users", Page{CurrentUser: super, Data: struct {
		Users []*models.User
		Logs  []models.AdminActionLog
	}{[]*models.User{super}, nil}}, nil))
	assert.NotContains(t, buf.String(), "/admin/users/1/toggle")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New(services.NewPolicy(""))
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", Page{}, nil))
}

func TestFormsCarryCSRFToken(t *testing.T) {
	r, err := New(services.NewPolicy("root@board.test"))
	require.NoError(t, err)
	alice := &models.User{ID: 2, Username: "alice", Department: "engineering"}
	post := &models.Post{ID: 7, Title: "Launch", UserID: alice.ID, User: alice}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "post", Page{CSRF: "tok123", CurrentUser: alice, Errors: map[string]string{}, Data: struct {
		Post             *models.Post
		Liked            bool
		CommentMaxLength int
	}{post, false, 500}}, nil))
	// like, delete, comment and the logout form in the layout
	assert.Equal(t, 4, strings.Count(buf.String(), `<input type="hidden" name="_csrf" value="tok123">`))
	assert.Contains(t, buf.String(), `<meta name="csrf-token" content="tok123">`)

	buf.Reset()
	require.NoError(t, r.Render(&buf, "login", Page{Form: struct{ Username, Next string }{}}, nil))
	assert.NotContains(t, buf.String(), `name="_csrf"`)
}
