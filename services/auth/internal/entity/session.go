package entity

import "time"

// Auth is the result of a successful signup or signin.
type Auth struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Session struct {
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"userId"`
	ExpiresAt     time.Time `json:"expiresAt"`
}
