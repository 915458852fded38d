// Package handler provides the server-rendered web surface for Quill.
package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/metrics"
	"github.com/quillhq/quill/internal/policy"
	"github.com/quillhq/quill/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookieName = "quill_flash"

// BlogHandler handles the blog's web pages and form submissions.
type BlogHandler struct {
	accounts *service.AccountService
	sessions *service.SessionService
	posts    *service.PostService
	comments *service.CommentService
	metrics  *metrics.Metrics

	cookieName      string
	cookieSecure    bool
	sessionLifetime time.Duration

	templates *template.Template
	logger    zerolog.Logger
}

// BlogConfig contains configuration for the blog handler.
type BlogConfig struct {
	AccountService *service.AccountService
	SessionService *service.SessionService
	PostService    *service.PostService
	CommentService *service.CommentService
	Metrics        *metrics.Metrics

	CookieName      string
	CookieSecure    bool
	SessionLifetime time.Duration

	Logger zerolog.Logger
}

// NewBlogHandler creates a new blog handler.
func NewBlogHandler(cfg BlogConfig) (*BlogHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &BlogHandler{
		accounts:        cfg.AccountService,
		sessions:        cfg.SessionService,
		posts:           cfg.PostService,
		comments:        cfg.CommentService,
		metrics:         cfg.Metrics,
		cookieName:      cfg.CookieName,
		cookieSecure:    cfg.CookieSecure,
		sessionLifetime: cfg.SessionLifetime,
		templates:       tmpl,
		logger:          cfg.Logger.With().Str("handler", "blog").Logger(),
	}, nil
}

// =============================================================================
// Template Data Structs
// =============================================================================

// Flash is a one-shot notification shown on the next page load.
type Flash struct {
	Kind    string // success, info, danger
	Message string
}

// PageData contains common page data.
type PageData struct {
	Title    string
	Identity domain.Identity
	Flash    *Flash
}

// IndexPageData contains home page data.
type IndexPageData struct {
	PageData
	Posts []*domain.Post
}

// PostPageData contains post detail page data.
type PostPageData struct {
	PageData
	Post     *domain.Post
	Comments []*commentView
}

// PostFormPageData contains data for the create and edit post forms.
type PostFormPageData struct {
	PageData
	Post         *domain.Post
	FormTitle    string
	FormContent  string
	FormImageURL string
}

// AdminPageData contains the admin panel data.
type AdminPageData struct {
	PageData
	Users []*domain.User
}

type commentView struct {
	*domain.Comment
	CanDelete bool
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers the blog routes.
func (h *BlogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/about", h.handleAbout)

	r.Get("/register", h.handleRegisterPage)
	r.Post("/register", h.handleRegister)
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Get("/posts/new", h.handleNewPostPage)
	r.Post("/posts/new", h.handleCreatePost)
	r.Get("/posts/{postID}", h.handlePostDetail)
	r.Get("/posts/{postID}/edit", h.handleEditPostPage)
	r.Post("/posts/{postID}/edit", h.handleEditPost)
	r.Post("/posts/{postID}/delete", h.handleDeletePost)

	r.Post("/posts/{postID}/comments", h.handleCreateComment)
	r.Post("/posts/{postID}/comments/{commentID}/delete", h.handleDeleteComment)

	r.Get("/admin", h.handleAdminPage)
	r.Post("/admin/users/{userID}/comment-privilege", h.handleCommentPrivilege)

	r.NotFound(h.handleNotFound)
}

// =============================================================================
// Public Pages
// =============================================================================

func (h *BlogHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.renderServerError(w, r)
		return
	}

	data := IndexPageData{
		PageData: h.pageData(w, r, "Quill"),
		Posts:    posts,
	}
	h.render(w, r, "index.html", data)
}

func (h *BlogHandler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "about.html", h.pageData(w, r, "About - Quill"))
}

func (h *BlogHandler) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	detail, err := h.posts.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			h.handleNotFound(w, r)
			return
		}
		h.renderServerError(w, r)
		return
	}

	identity := IdentityFrom(r.Context())
	comments := make([]*commentView, 0, len(detail.Comments))
	for _, c := range detail.Comments {
		comments = append(comments, &commentView{
			Comment:   c,
			CanDelete: policy.CanDeleteComment(identity, c),
		})
	}

	data := PostPageData{
		PageData: h.pageData(w, r, detail.Post.Title+" - Quill"),
		Post:     detail.Post,
		Comments: comments,
	}
	h.render(w, r, "post.html", data)
}

// =============================================================================
// Authentication Handlers
// =============================================================================

func (h *BlogHandler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if !IdentityFrom(r.Context()).IsAnonymous() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "register.html", h.pageData(w, r, "Register - Quill"))
}

func (h *BlogHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !IdentityFrom(r.Context()).IsAnonymous() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/register", "danger", "Invalid form data.")
		return
	}

	_, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.flashRedirect(w, r, "/register", "danger", "Email address already in use!")
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidPassword):
			h.flashRedirect(w, r, "/register", "danger", capitalize(err.Error())+".")
		default:
			h.renderServerError(w, r)
		}
		return
	}

	h.flashRedirect(w, r, "/login", "success", "Registration successful! You can now log in.")
}

func (h *BlogHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if !IdentityFrom(r.Context()).IsAnonymous() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", h.pageData(w, r, "Login - Quill"))
}

func (h *BlogHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !IdentityFrom(r.Context()).IsAnonymous() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/login", "danger", "Invalid form data.")
		return
	}

	output, err := h.sessions.Login(r.Context(), service.LoginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.flashRedirect(w, r, "/login", "danger", "Invalid email or password")
			return
		}
		h.renderServerError(w, r)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    output.Session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionLifetime / time.Second),
	})
	if h.metrics != nil {
		h.metrics.SessionOpened()
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *BlogHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err == nil && h.metrics != nil {
			h.metrics.SessionClosed()
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// =============================================================================
// Post Handlers
// =============================================================================

func (h *BlogHandler) handleNewPostPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "You need to be logged in to create posts.", "Only admins can create posts.") {
		return
	}
	data := PostFormPageData{
		PageData: h.pageData(w, r, "New Post - Quill"),
	}
	h.render(w, r, "create_post.html", data)
}

func (h *BlogHandler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "You need to be logged in to create posts.", "Only admins can create posts.") {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/posts/new", "danger", "Invalid form data.")
		return
	}

	title, content, imageURL := postFormValues(r)
	_, err := h.posts.Create(r.Context(), IdentityFrom(r.Context()), service.CreatePostInput{
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		if flash, ok := validationFlash(err); ok {
			h.flashRedirect(w, r, "/posts/new", flash.Kind, flash.Message)
			return
		}
		h.renderServerError(w, r)
		return
	}

	h.flashRedirect(w, r, "/", "success", "Post created successfully.")
}

func (h *BlogHandler) handleEditPostPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "You need to be logged in to edit posts.", "Only admins can edit posts.") {
		return
	}

	postID, err := parseID(chi.URLParam(r, "postID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	detail, err := h.posts.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			h.handleNotFound(w, r)
			return
		}
		h.renderServerError(w, r)
		return
	}

	data := PostFormPageData{
		PageData:    h.pageData(w, r, "Edit Post - Quill"),
		Post:        detail.Post,
		FormTitle:   detail.Post.Title,
		FormContent: detail.Post.Content,
	}
	if detail.Post.ImageURL != nil {
		data.FormImageURL = *detail.Post.ImageURL
	}
	h.render(w, r, "edit_post.html", data)
}

func (h *BlogHandler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "You need to be logged in to edit posts.", "Only admins can edit posts.") {
		return
	}

	postID, err := parseID(chi.URLParam(r, "postID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, postPath(postID)+"/edit", "danger", "Invalid form data.")
		return
	}

	title, content, imageURL := postFormValues(r)
	_, err = h.posts.Edit(r.Context(), IdentityFrom(r.Context()), service.EditPostInput{
		PostID:   postID,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPostNotFound):
			h.handleNotFound(w, r)
		default:
			if flash, ok := validationFlash(err); ok {
				h.flashRedirect(w, r, postPath(postID)+"/edit", flash.Kind, flash.Message)
				return
			}
			h.renderServerError(w, r)
		}
		return
	}

	h.flashRedirect(w, r, postPath(postID), "success", "Post updated successfully.")
}

func (h *BlogHandler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "You need to be logged in to delete posts.", "Only admins can delete posts.") {
		return
	}

	postID, err := parseID(chi.URLParam(r, "postID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	if err := h.posts.Delete(r.Context(), IdentityFrom(r.Context()), postID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			h.handleNotFound(w, r)
			return
		}
		h.renderServerError(w, r)
		return
	}

	h.flashRedirect(w, r, "/", "success", "Post deleted successfully.")
}

// =============================================================================
// Comment Handlers
// =============================================================================

func (h *BlogHandler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	identity := IdentityFrom(r.Context())
	if identity.IsAnonymous() {
		h.flashRedirect(w, r, "/login", "info", "You need to be logged in to comment.")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, postPath(postID), "danger", "Invalid form data.")
		return
	}

	_, err = h.comments.Create(r.Context(), identity, service.CreateCommentInput{
		PostID: postID,
		Text:   r.FormValue("text"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccessDenied):
			h.flashRedirect(w, r, postPath(postID), "danger", "You are blocked from commenting.")
		case errors.Is(err, service.ErrDuplicateComment):
			h.flashRedirect(w, r, postPath(postID), "info", "You have already commented on this post")
		case errors.Is(err, service.ErrEmptyComment):
			h.flashRedirect(w, r, postPath(postID), "danger", "Comment cannot be empty.")
		case errors.Is(err, domain.ErrPostNotFound):
			h.handleNotFound(w, r)
		default:
			h.renderServerError(w, r)
		}
		return
	}

	h.flashRedirect(w, r, postPath(postID), "success", "Your comment has been added.")
}

func (h *BlogHandler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(chi.URLParam(r, "postID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}
	commentID, err := parseID(chi.URLParam(r, "commentID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	identity := IdentityFrom(r.Context())
	if identity.IsAnonymous() {
		h.flashRedirect(w, r, "/login", "danger", "You need to be logged in to delete comments.")
		return
	}

	if err := h.comments.Delete(r.Context(), identity, postID, commentID); err != nil {
		switch {
		case errors.Is(err, domain.ErrCommentNotFound):
			h.handleNotFound(w, r)
		case errors.Is(err, domain.ErrAccessDenied):
			h.flashRedirect(w, r, postPath(postID), "danger", "You can only delete your own comments.")
		default:
			h.renderServerError(w, r)
		}
		return
	}

	h.flashRedirect(w, r, postPath(postID), "success", "Comment deleted.")
}

// =============================================================================
// Admin Handlers
// =============================================================================

func (h *BlogHandler) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "You must be logged in to access this page.", "You do not have permission to access this page.") {
		return
	}

	users, err := h.accounts.ListUsers(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		h.renderServerError(w, r)
		return
	}

	data := AdminPageData{
		PageData: h.pageData(w, r, "Admin - Quill"),
		Users:    users,
	}
	h.render(w, r, "admin.html", data)
}

func (h *BlogHandler) handleCommentPrivilege(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "Unauthorized access.", "Unauthorized access.") {
		return
	}

	userID, err := parseID(chi.URLParam(r, "userID"))
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.flashRedirect(w, r, "/admin", "danger", "Invalid form data.")
		return
	}

	canComment := r.FormValue("can_comment") == "true"
	err = h.accounts.SetCommentPrivilege(r.Context(), IdentityFrom(r.Context()), userID, canComment)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.handleNotFound(w, r)
			return
		}
		h.renderServerError(w, r)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// =============================================================================
// Error Pages
// =============================================================================

func (h *BlogHandler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r, "Not Found - Quill")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.templates.ExecuteTemplate(w, "404.html", data); err != nil {
		h.logger.Error().Err(err).Msg("failed to render 404 page")
	}
}

func (h *BlogHandler) renderServerError(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r, "Error - Quill")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := h.templates.ExecuteTemplate(w, "500.html", data); err != nil {
		h.logger.Error().Err(err).Msg("failed to render 500 page")
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

// requireAdmin redirects non-admin requests away and reports whether the
// request may proceed. Anonymous users go to the login page, signed-in
// non-admins to the home page, matching the flash kinds of each case.
func (h *BlogHandler) requireAdmin(w http.ResponseWriter, r *http.Request, loginMsg, deniedMsg string) bool {
	identity := IdentityFrom(r.Context())
	if identity.IsAnonymous() {
		h.flashRedirect(w, r, "/login", "info", loginMsg)
		return false
	}
	if !identity.IsAdmin {
		h.flashRedirect(w, r, "/", "danger", deniedMsg)
		return false
	}
	return true
}

func (h *BlogHandler) pageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	return PageData{
		Title:    title,
		Identity: IdentityFrom(r.Context()),
		Flash:    h.popFlash(w, r),
	}
}

func (h *BlogHandler) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// flashRedirect stores a one-shot flash cookie and redirects.
func (h *BlogHandler) flashRedirect(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
	http.Redirect(w, r, location, http.StatusFound)
}

// popFlash reads and clears the flash cookie, if any.
func (h *BlogHandler) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, found := strings.Cut(value, "|")
	if !found || message == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

func postFormValues(r *http.Request) (title, content string, imageURL *string) {
	title = r.FormValue("title")
	content = r.FormValue("content")
	if raw := strings.TrimSpace(r.FormValue("image_url")); raw != "" {
		imageURL = &raw
	}
	return title, content, imageURL
}

// validationFlash maps validation errors to a user-facing flash.
func validationFlash(err error) (Flash, bool) {
	switch {
	case errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrImageURLTooLong):
		return Flash{Kind: "danger", Message: capitalize(err.Error()) + "."}, true
	}
	return Flash{}, false
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func postPath(postID int64) string {
	return "/posts/" + strconv.FormatInt(postID, 10)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
