package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/internal/repository"
	"github.com/quillhq/quill/internal/repository/memory"
	"github.com/quillhq/quill/internal/repository/sqlite"
	"github.com/quillhq/quill/internal/service"
)

const testCookieName = "quill_session"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()

	db, err := sqlite.NewDB(context.Background(), sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	repos := repository.Repositories{
		Users:    sqlite.NewUserRepository(db),
		Posts:    sqlite.NewPostRepository(db),
		Comments: sqlite.NewCommentRepository(db),
		Sessions: memory.NewSessionStore(),
	}

	accounts := service.NewAccountService(repos.Users, logger)
	sessions := service.NewSessionService(repos.Users, repos.Sessions, accounts, time.Hour, logger)
	posts := service.NewPostService(repos.Posts, repos.Comments, logger)
	comments := service.NewCommentService(repos.Comments, repos.Posts, logger)

	blog, err := NewBlogHandler(BlogConfig{
		AccountService:  accounts,
		SessionService:  sessions,
		PostService:     posts,
		CommentService:  comments,
		CookieName:      testCookieName,
		SessionLifetime: time.Hour,
		Logger:          logger,
	})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		BlogHandler:    blog,
		SessionService: sessions,
		Health:         db,
		CookieName:     testCookieName,
		Logger:         logger,
	})

	server := httptest.NewServer(router.Handler())
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func get(t *testing.T, client *http.Client, rawURL string) (int, string) {
	t.Helper()

	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) (int, string) {
	t.Helper()

	resp, err := client.PostForm(rawURL, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func registerAndLogin(t *testing.T, client *http.Client, baseURL, email, password string) {
	t.Helper()

	status, body := postForm(t, client, baseURL+"/register", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Registration successful")

	status, _ = postForm(t, client, baseURL+"/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, status)
}

func TestBlogEndToEnd(t *testing.T) {
	server := newTestServer(t)

	admin := newClient(t)
	reader := newClient(t)

	t.Run("health", func(t *testing.T) {
		status, body := get(t, admin, server.URL+"/health")
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "healthy")
	})

	t.Run("first registered user is admin", func(t *testing.T) {
		registerAndLogin(t, admin, server.URL, "admin@example.com", "secret")

		// Admin panel loads for the first user.
		status, body := get(t, admin, server.URL+"/admin")
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "admin@example.com")
	})

	t.Run("second user is not admin", func(t *testing.T) {
		registerAndLogin(t, reader, server.URL, "reader@example.com", "secret")

		// Non-admin lands back on the home page with a denial flash.
		status, body := get(t, reader, server.URL+"/admin")
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "do not have permission")
	})

	t.Run("admin creates a post", func(t *testing.T) {
		status, body := postForm(t, admin, server.URL+"/posts/new", url.Values{
			"title":   {"Hello, World"},
			"content": {"The very first post."},
		})
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "Post created successfully")
		require.Contains(t, body, "Hello, World")
	})

	t.Run("non-admin cannot create a post", func(t *testing.T) {
		_, body := postForm(t, reader, server.URL+"/posts/new", url.Values{
			"title":   {"Sneaky"},
			"content": {"Should not appear."},
		})
		require.Contains(t, body, "Only admins can create posts")

		_, home := get(t, reader, server.URL+"/")
		require.NotContains(t, home, "Sneaky")
	})

	t.Run("reader comments on the post", func(t *testing.T) {
		status, body := postForm(t, reader, server.URL+"/posts/1/comments", url.Values{
			"text": {"Great first post!"},
		})
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "Your comment has been added")
		require.Contains(t, body, "Great first post!")
		require.Contains(t, body, "reader@example.com")
	})

	t.Run("reader cannot comment twice on the same post", func(t *testing.T) {
		_, body := postForm(t, reader, server.URL+"/posts/1/comments", url.Values{
			"text": {"Me again"},
		})
		require.Contains(t, body, "already commented")
		require.NotContains(t, body, "Me again")
	})

	t.Run("anonymous visitor is sent to login to comment", func(t *testing.T) {
		anon := newClient(t)
		_, body := postForm(t, anon, server.URL+"/posts/1/comments", url.Values{
			"text": {"drive-by"},
		})
		require.Contains(t, body, "logged in to comment")
	})

	t.Run("admin blocks the reader from commenting", func(t *testing.T) {
		status, _ := postForm(t, admin, server.URL+"/admin/users/2/comment-privilege", url.Values{
			"can_comment": {"false"},
		})
		require.Equal(t, http.StatusOK, status)

		_, body := postForm(t, reader, server.URL+"/posts/1/comments", url.Values{
			"text": {"One more thing"},
		})
		require.Contains(t, body, "blocked from commenting")
	})

	t.Run("reader deletes own comment", func(t *testing.T) {
		status, body := postForm(t, reader, server.URL+"/posts/1/comments/1/delete", nil)
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "Comment deleted")
		require.NotContains(t, body, "Great first post!")
	})

	t.Run("admin deletes the post", func(t *testing.T) {
		status, _ := postForm(t, admin, server.URL+"/posts/1/delete", nil)
		require.Equal(t, http.StatusOK, status)

		status, _ = get(t, admin, server.URL+"/posts/1")
		require.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown page renders 404", func(t *testing.T) {
		status, body := get(t, admin, server.URL+"/no-such-page")
		require.Equal(t, http.StatusNotFound, status)
		require.Contains(t, body, "404")
	})
}

func TestLoginLogout(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	registerAndLogin(t, client, server.URL, "alice@example.com", "secret")

	// Logged-in navbar shows logout.
	_, body := get(t, client, server.URL+"/")
	require.Contains(t, body, "Logout")

	status, body := postForm(t, client, server.URL+"/logout", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotContains(t, body, "Logout")
	require.Contains(t, body, "Login")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	status, body := postForm(t, client, server.URL+"/register", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret"},
	})
	require.Equal(t, http.StatusOK, status)
	_ = body

	_, body = postForm(t, client, server.URL+"/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong-password"},
	})
	require.Contains(t, body, "Invalid email or password")

	// Still anonymous: the admin page bounces to login.
	_, body = get(t, client, server.URL+"/admin")
	require.Contains(t, body, "must be logged in")
}
