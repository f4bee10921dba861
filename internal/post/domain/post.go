package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
)

type ID string

// Post is a blog entry. OwnerID is bound once at creation and is the only
// authority consulted for delete rights.
type Post struct {
	ID        ID
	Title     string
	Author    string
	URL       string
	Likes     int
	OwnerID   userdomain.ID
	Owner     userdomain.Summary
	CreatedAt time.Time
}

// Update carries the mutable fields of a post. Nil fields are left as they
// are.
type Update struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.URL == nil && u.Likes == nil
}
