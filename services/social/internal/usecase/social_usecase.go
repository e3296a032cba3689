package usecase

import (
	"context"
	"strings"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/logger"
	"animov/pkg/models"
	"animov/pkg/queue"
	"animov/services/social/internal/entity"
	"animov/services/social/internal/repo/persistent"

	"github.com/google/uuid"
)

var (
	ErrSelfRequest = apperr.Kind(apperr.ErrValidation, "you cannot send a friend request to yourself")
	ErrSelfBlock   = apperr.Kind(apperr.ErrValidation, "you cannot block yourself")
	ErrNoTarget    = apperr.Kind(apperr.ErrValidation, "userId or username is required")
	ErrBlocked     = apperr.Kind(apperr.ErrConflict, "this user is unavailable")
)

type SocialUseCase interface {
	SendRequest(ctx context.Context, userID string, target entity.RequestTarget) (*entity.Friendship, error)
	Accept(ctx context.Context, userID, id string) (*entity.Friendship, error)
	Reject(ctx context.Context, userID, id string) error
	Unfriend(ctx context.Context, userID, id string) error
	Block(ctx context.Context, userID, targetID string) (*entity.Relationship, error)
	Unblock(ctx context.Context, userID, targetID string) error

	Friends(ctx context.Context, userID string) ([]*entity.Friendship, error)
	Requests(ctx context.Context, userID string, direction entity.Direction) ([]*entity.Friendship, error)
	Blocked(ctx context.Context, userID string) ([]*entity.Friendship, error)
	Relationship(ctx context.Context, userID, otherID string) (*entity.Relationship, error)
}

type socialUseCase struct {
	friendshipRepo persistent.FriendshipRepository
	publisher      queue.Publisher
	logger         *logger.Logger
}

// NewSocialUseCase builds the use case. publisher may be nil.
func NewSocialUseCase(friendshipRepo persistent.FriendshipRepository, publisher queue.Publisher, logger *logger.Logger) SocialUseCase {
	return &socialUseCase{
		friendshipRepo: friendshipRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

// canonicalID lower-cases a UUID path value so it orders the same way the
// database does. Anything that is not a UUID is returned unchanged.
func canonicalID(id string) string {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return parsed.String()
}

func (uc *socialUseCase) resolveTarget(ctx context.Context, target entity.RequestTarget) (*entity.UserSummary, error) {
	switch {
	case target.UserID != "":
		return uc.friendshipRepo.FindUser(ctx, canonicalID(target.UserID))
	case strings.TrimSpace(target.Username) != "":
		return uc.friendshipRepo.FindUserByUsername(ctx, target.Username)
	}
	return nil, ErrNoTarget
}

func (uc *socialUseCase) SendRequest(ctx context.Context, userID string, target entity.RequestTarget) (*entity.Friendship, error) {
	if canonicalID(target.UserID) == userID {
		return nil, ErrSelfRequest
	}
	addressee, err := uc.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if addressee.ID == userID {
		return nil, ErrSelfRequest
	}

	existing, err := uc.friendshipRepo.FindPair(ctx, userID, addressee.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, persistent.ErrRelationshipExists
	}

	friendship, err := uc.friendshipRepo.CreateRequest(ctx, userID, addressee.ID)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, queue.EventFriendRequest, addressee.ID, userID)
	return persistent.ToFriendshipEntity(friendship, userID, addressee), nil
}

func (uc *socialUseCase) Accept(ctx context.Context, userID, id string) (*entity.Friendship, error) {
	if err := uc.friendshipRepo.Accept(ctx, id, userID); err != nil {
		return nil, err
	}

	friendship, err := uc.friendshipRepo.GetView(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, queue.EventFriendAccepted, friendship.RequesterID, userID)
	return friendship, nil
}

func (uc *socialUseCase) Reject(ctx context.Context, userID, id string) error {
	return uc.friendshipRepo.DeletePending(ctx, id, userID)
}

func (uc *socialUseCase) Unfriend(ctx context.Context, userID, id string) error {
	return uc.friendshipRepo.DeleteAccepted(ctx, id, userID)
}

func (uc *socialUseCase) Block(ctx context.Context, userID, targetID string) (*entity.Relationship, error) {
	if canonicalID(targetID) == userID {
		return nil, ErrSelfBlock
	}
	target, err := uc.friendshipRepo.FindUser(ctx, canonicalID(targetID))
	if err != nil {
		return nil, err
	}
	if target.ID == userID {
		return nil, ErrSelfBlock
	}

	applied, err := uc.friendshipRepo.Block(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrBlocked
	}
	return uc.Relationship(ctx, userID, target.ID)
}

func (uc *socialUseCase) Unblock(ctx context.Context, userID, targetID string) error {
	return uc.friendshipRepo.Unblock(ctx, userID, canonicalID(targetID))
}

func (uc *socialUseCase) Friends(ctx context.Context, userID string) ([]*entity.Friendship, error) {
	return uc.friendshipRepo.ListAccepted(ctx, userID)
}

func (uc *socialUseCase) Requests(ctx context.Context, userID string, direction entity.Direction) ([]*entity.Friendship, error) {
	if direction != "" && !direction.Valid() {
		return nil, apperr.Kind(apperr.ErrValidation, "direction must be incoming or outgoing")
	}
	return uc.friendshipRepo.ListPending(ctx, userID, direction)
}

func (uc *socialUseCase) Blocked(ctx context.Context, userID string) ([]*entity.Friendship, error) {
	return uc.friendshipRepo.ListBlocked(ctx, userID)
}

// Relationship reports the state between userID and otherID. A block placed
// by otherID reads as "none" to userID.
func (uc *socialUseCase) Relationship(ctx context.Context, userID, otherID string) (*entity.Relationship, error) {
	other, err := uc.friendshipRepo.FindUser(ctx, canonicalID(otherID))
	if err != nil {
		return nil, err
	}

	rel := &entity.Relationship{UserID: other.ID, Status: entity.StatusNone}
	if other.ID == userID {
		return rel, nil
	}

	friendship, err := uc.friendshipRepo.FindPair(ctx, userID, other.ID)
	if err != nil {
		return nil, err
	}
	if friendship == nil {
		return rel, nil
	}
	if friendship.Status == models.FriendshipBlocked && friendship.RequesterID != userID {
		return rel, nil
	}

	view := persistent.ToFriendshipEntity(friendship, userID, nil)
	rel.Status = view.Status
	rel.Direction = view.Direction
	rel.FriendshipID = view.ID
	return rel, nil
}

func (uc *socialUseCase) publish(ctx context.Context, eventType queue.EventType, recipientID, actorID string) {
	if uc.publisher == nil {
		return
	}

	event := queue.Event{
		Type:        eventType,
		RecipientID: recipientID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
	if actor, err := uc.friendshipRepo.FindUser(ctx, actorID); err == nil {
		event.ActorName = actor.Name()
	}

	queue.PublishAsync(uc.publisher, event, func(err error) {
		uc.logger.Error("Failed to publish %s event to %s: %v", eventType, recipientID, err)
	})
}
