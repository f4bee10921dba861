package domain

import "time"

type ID string

// User is a registered account. PostIDs is a bookkeeping list of the posts
// the user created; Post.OwnerID remains the source of truth for ownership.
type User struct {
	ID           ID
	Username     string
	Name         string
	PasswordHash string
	PostIDs      []string
	CreatedAt    time.Time
}

// Summary is the public projection of a user embedded in other resources.
type Summary struct {
	ID       ID
	Username string
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username}
}
