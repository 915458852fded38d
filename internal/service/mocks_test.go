package service

import (
	"context"
	"sort"

	"github.com/quillhq/quill/internal/domain"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	// First user in becomes admin, mirroring the backends.
	user.IsAdmin = len(m.users) == 0
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.users[user.ID]; !exists {
		return domain.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.users[id])
	}
	return result, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// MockPostRepository is a mock implementation of repository.PostRepository.
type MockPostRepository struct {
	posts     map[int64]*domain.Post
	nextID    int64
	createErr error
	getErr    error
	deleteErr error
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		posts:  make(map[int64]*domain.Post),
		nextID: 1,
	}
}

func (m *MockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if m.createErr != nil {
		return m.createErr
	}
	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, exists := m.posts[id]; exists {
		return p, nil
	}
	return nil, domain.ErrPostNotFound
}

func (m *MockPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	ids := make([]int64, 0, len(m.posts))
	for id := range m.posts {
		ids = append(ids, id)
	}
	// Newest first.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	result := make([]*domain.Post, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.posts[id])
	}
	return result, nil
}

func (m *MockPostRepository) Update(ctx context.Context, post *domain.Post) error {
	if _, exists := m.posts[post.ID]; !exists {
		return domain.ErrPostNotFound
	}
	m.posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.posts[id]; !exists {
		return domain.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

// MockCommentRepository is a mock implementation of repository.CommentRepository.
type MockCommentRepository struct {
	comments  map[int64]*domain.Comment
	nextID    int64
	createErr error
	getErr    error
	deleteErr error
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		comments: make(map[int64]*domain.Comment),
		nextID:   1,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.createErr != nil {
		return m.createErr
	}
	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if c, exists := m.comments[id]; exists {
		return c, nil
	}
	return nil, domain.ErrCommentNotFound
}

func (m *MockCommentRepository) ListByPostID(ctx context.Context, postID int64) ([]*domain.Comment, error) {
	ids := make([]int64, 0, len(m.comments))
	for id, c := range m.comments {
		if c.PostID == postID {
			ids = append(ids, id)
		}
	}
	// Oldest first.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.comments[id])
	}
	return result, nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.comments[id]; !exists {
		return domain.ErrCommentNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *MockCommentRepository) ExistsByUserAndPost(ctx context.Context, userID, postID int64) (bool, error) {
	for _, c := range m.comments {
		if c.UserID == userID && c.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

// MockSessionStore is a mock implementation of repository.SessionStore.
type MockSessionStore struct {
	sessions  map[string]*domain.Session
	createErr error
	getErr    error
	deleteErr error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[session.Token] = session
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	session, exists := m.sessions[token]
	if !exists || session.Expired() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.sessions, token)
	return nil
}
