package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type ProfileVisibility string

const (
	VisibilityPublic  ProfileVisibility = "public"
	VisibilityFriends ProfileVisibility = "friends"
	VisibilityPrivate ProfileVisibility = "private"
)

type Preferences struct {
	Theme              Theme    `json:"theme"`
	Language           string   `json:"language"`
	FavoriteGenres     []string `json:"favoriteGenres"`
	DefaultContentType string   `json:"defaultContentType"`
}

// NotificationSettings toggles which events produce a notification.
type NotificationSettings struct {
	FriendRequests bool `json:"friendRequests"`
	FriendAccepted bool `json:"friendAccepted"`
	CommentReplies bool `json:"commentReplies"`
	CommentLikes   bool `json:"commentLikes"`
}

type PrivacySettings struct {
	ProfileVisibility ProfileVisibility `json:"profileVisibility"`
	ShowLists         bool              `json:"showLists"`
	ShowActivity      bool              `json:"showActivity"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeSystem, Language: "en", FavoriteGenres: []string{}}
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{FriendRequests: true, FriendAccepted: true, CommentReplies: true, CommentLikes: true}
}

func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{ProfileVisibility: VisibilityPublic, ShowLists: true, ShowActivity: true}
}

type User struct {
	ID            string               `gorm:"type:uuid;primary_key" json:"id"`
	Email         string               `gorm:"uniqueIndex;not null" json:"email"`
	Username      string               `gorm:"uniqueIndex;not null" json:"username"`
	Password      string               `gorm:"not null" json:"-"`
	DisplayName   string               `gorm:"type:varchar(100)" json:"display_name"`
	AvatarURL     string               `gorm:"type:varchar(500)" json:"avatar_url"`
	Preferences   Preferences          `gorm:"serializer:json;type:text" json:"preferences"`
	Notifications NotificationSettings `gorm:"serializer:json;type:text" json:"notifications"`
	Privacy       PrivacySettings      `gorm:"serializer:json;type:text" json:"privacy"`
	IsActive      bool                 `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	DeletedAt     gorm.DeletedAt       `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
