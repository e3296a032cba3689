package entity

import (
	"time"

	"animov/pkg/models"
)

type User struct {
	ID            string                      `json:"id"`
	Email         string                      `json:"email"`
	Username      string                      `json:"username"`
	Password      string                      `json:"-"`
	DisplayName   string                      `json:"displayName"`
	AvatarURL     string                      `json:"avatarUrl"`
	Preferences   models.Preferences          `json:"preferences"`
	Notifications models.NotificationSettings `json:"notifications"`
	Privacy       models.PrivacySettings      `json:"privacy"`
	IsActive      bool                        `json:"isActive"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// Profile is what other users see. Restricted profiles carry only the
// identity fields.
type Profile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"displayName"`
	AvatarURL    string     `json:"avatarUrl"`
	Restricted   bool       `json:"restricted"`
	ShowLists    bool       `json:"showLists"`
	ShowActivity bool       `json:"showActivity"`
	MemberSince  *time.Time `json:"memberSince,omitempty"`
}

// UserPatch is a partial update of the caller's own account; nil fields are
// left unchanged.
type UserPatch struct {
	DisplayName   *string
	Preferences   *PreferencesPatch
	Notifications *NotificationsPatch
	Privacy       *PrivacyPatch
}

type PreferencesPatch struct {
	Theme              *models.Theme `json:"theme"`
	Language           *string       `json:"language"`
	FavoriteGenres     []string      `json:"favoriteGenres"`
	DefaultContentType *string       `json:"defaultContentType"`
}

type NotificationsPatch struct {
	FriendRequests *bool `json:"friendRequests"`
	FriendAccepted *bool `json:"friendAccepted"`
	CommentReplies *bool `json:"commentReplies"`
	CommentLikes   *bool `json:"commentLikes"`
}

type PrivacyPatch struct {
	ProfileVisibility *models.ProfileVisibility `json:"profileVisibility"`
	ShowLists         *bool                     `json:"showLists"`
	ShowActivity      *bool                     `json:"showActivity"`
}
