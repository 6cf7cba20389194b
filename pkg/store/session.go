package store

import "time"

// Session is the server-side state behind one opaque session cookie.
// It mirrors what the identity provider asserted at bridge time and lives
// only as long as the backing store's TTL.
type Session struct {
	Id          string    `json:"id"`
	UserId      string    `json:"user_id"`
	Email       string    `json:"email"`
	Audience    string    `json:"aud"`
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
}
