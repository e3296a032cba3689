package persistent

import (
	"animov/pkg/models"
	"animov/services/social/internal/entity"
)

// ToFriendshipEntity renders m from viewerID's side; other may be nil.
func ToFriendshipEntity(m *models.Friendship, viewerID string, other *entity.UserSummary) *entity.Friendship {
	if m == nil {
		return nil
	}

	friendship := &entity.Friendship{
		ID:          m.ID,
		Status:      string(m.Status),
		RequesterID: m.RequesterID,
		User:        other,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if friendship.User == nil {
		friendship.User = &entity.UserSummary{ID: m.Other(viewerID)}
	}
	if m.Status == models.FriendshipPending {
		friendship.Direction = entity.Incoming
		if m.RequesterID == viewerID {
			friendship.Direction = entity.Outgoing
		}
	}
	return friendship
}

func ToUserSummary(m *models.User) *entity.UserSummary {
	if m == nil {
		return nil
	}

	return &entity.UserSummary{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		AvatarURL:   m.AvatarURL,
	}
}

// friendshipRow is a friendship joined with the viewer's counterpart.
type friendshipRow struct {
	models.Friendship
	OtherUsername    string
	OtherDisplayName string
	OtherAvatarURL   string
}

func (r *friendshipRow) toEntity(viewerID string) *entity.Friendship {
	return ToFriendshipEntity(&r.Friendship, viewerID, &entity.UserSummary{
		ID:          r.Other(viewerID),
		Username:    r.OtherUsername,
		DisplayName: r.OtherDisplayName,
		AvatarURL:   r.OtherAvatarURL,
	})
}
