package http_test

import (
	"context"
	"sync"

	"github.com/AlibekovAA/bloglist/backend/internal/post/domain"
	"github.com/AlibekovAA/bloglist/backend/internal/post/repository"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
	userrepo "github.com/AlibekovAA/bloglist/backend/internal/user/repository"
)

// memStore backs both repositories in memory and keeps the users'
// post lists in step with the posts, as the postgres repositories do.
type memStore struct {
	mu    sync.Mutex
	users []userdomain.User
	posts []domain.Post
}

type memUsers struct{ s *memStore }

type memPosts struct{ s *memStore }

func (m memUsers) Create(ctx context.Context, user userdomain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == user.Username {
			return userrepo.ErrUsernameAlreadyExists
		}
	}
	user.PostIDs = []string{}
	m.s.users = append(m.s.users, user)
	return nil
}

func (m memUsers) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m memUsers) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if i := m.s.userIndex(id); i >= 0 {
		return m.s.users[i], nil
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m memUsers) List(ctx context.Context) ([]userdomain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]userdomain.User(nil), m.s.users...), nil
}

func (s *memStore) userIndex(id userdomain.ID) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s *memStore) postIndex(id domain.ID) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *memStore) withOwner(p domain.Post) domain.Post {
	if i := s.userIndex(p.OwnerID); i >= 0 {
		p.Owner = s.users[i].Summary()
	}
	return p
}

func (m memPosts) FindAll(ctx context.Context) ([]domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	posts := make([]domain.Post, 0, len(m.s.posts))
	for _, p := range m.s.posts {
		posts = append(posts, m.s.withOwner(p))
	}
	return posts, nil
}

func (m memPosts) FindByID(ctx context.Context, id domain.ID) (domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if i := m.s.postIndex(id); i >= 0 {
		return m.s.withOwner(m.s.posts[i]), nil
	}
	return domain.Post{}, repository.ErrPostNotFound
}

func (m memPosts) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i := m.s.userIndex(post.OwnerID)
	if i < 0 {
		return domain.Post{}, userrepo.ErrUserNotFound
	}
	m.s.posts = append(m.s.posts, post)
	m.s.users[i].PostIDs = append(m.s.users[i].PostIDs, string(post.ID))
	return m.s.withOwner(post), nil
}

func (m memPosts) Update(ctx context.Context, id domain.ID, update domain.Update) (domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i := m.s.postIndex(id)
	if i < 0 {
		return domain.Post{}, repository.ErrPostNotFound
	}
	p := &m.s.posts[i]
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Author != nil {
		p.Author = *update.Author
	}
	if update.URL != nil {
		p.URL = *update.URL
	}
	if update.Likes != nil {
		p.Likes = *update.Likes
	}
	return m.s.withOwner(*p), nil
}

func (m memPosts) Delete(ctx context.Context, id domain.ID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i := m.s.postIndex(id)
	if i < 0 {
		return repository.ErrPostNotFound
	}
	owner := m.s.posts[i].OwnerID
	m.s.posts = append(m.s.posts[:i], m.s.posts[i+1:]...)
	if u := m.s.userIndex(owner); u >= 0 {
		kept := m.s.users[u].PostIDs[:0]
		for _, pid := range m.s.users[u].PostIDs {
			if pid != string(id) {
				kept = append(kept, pid)
			}
		}
		m.s.users[u].PostIDs = kept
	}
	return nil
}
