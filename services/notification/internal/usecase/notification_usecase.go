package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/logger"
	"animov/pkg/metrics"
	"animov/pkg/models"
	"animov/pkg/queue"
	"animov/services/notification/internal/entity"
	"animov/services/notification/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	InboxSize        = 100
	DefaultPageSize  = 20
	inboxTTL         = 30 * 24 * time.Hour
	unknownActorName = "Someone"
)

type NotificationUseCase interface {
	HandleEvent(ctx context.Context, event queue.Event) error
	List(ctx context.Context, userID string, limit, offset int) (*entity.NotificationPage, error)
	Clear(ctx context.Context, userID string) error
	Stream(ctx context.Context, userID string, send func(entity.Notification) error) error
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	redisClient      *redis.Client
	logger           *logger.Logger
}

func NewNotificationUseCase(notificationRepo persistent.NotificationRepository, redisClient *redis.Client, logger *logger.Logger) NotificationUseCase {
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		redisClient:      redisClient,
		logger:           logger,
	}
}

func InboxKey(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func enabled(settings *models.NotificationSettings, eventType queue.EventType) bool {
	switch eventType {
	case queue.EventFriendRequest:
		return settings.FriendRequests
	case queue.EventFriendAccepted:
		return settings.FriendAccepted
	case queue.EventCommentReply:
		return settings.CommentReplies
	case queue.EventCommentLike:
		return settings.CommentLikes
	}
	return false
}

func render(eventType queue.EventType, actor string) (string, string) {
	switch eventType {
	case queue.EventFriendRequest:
		return "New friend request", fmt.Sprintf("%s sent you a friend request", actor)
	case queue.EventFriendAccepted:
		return "Friend request accepted", fmt.Sprintf("%s accepted your friend request", actor)
	case queue.EventCommentReply:
		return "New reply", fmt.Sprintf("%s replied to your comment", actor)
	default:
		return "New like", fmt.Sprintf("%s liked your comment", actor)
	}
}

// HandleEvent stores a notification for the event's recipient. Events for
// unknown recipients or disabled toggles are acknowledged without storing;
// a returned error means the delivery should be retried.
func (uc *notificationUseCase) HandleEvent(ctx context.Context, event queue.Event) error {
	settings, err := uc.notificationRepo.GetSettings(ctx, event.RecipientID)
	if errors.Is(err, persistent.ErrUserNotFound) {
		uc.logger.Warn("[NOTIFICATION HANDLER] Dropping %s event for unknown recipient %s", event.Type, event.RecipientID)
		return nil
	}
	if err != nil {
		return err
	}
	if !enabled(settings, event.Type) {
		uc.logger.Debug("[NOTIFICATION HANDLER] %s notifications disabled for user %s, skipping", event.Type, event.RecipientID)
		return nil
	}

	actor := event.ActorName
	if actor == "" {
		if name, err := uc.notificationRepo.GetUsername(ctx, event.ActorID); err == nil {
			actor = name
		} else {
			actor = unknownActorName
		}
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	title, message := render(event.Type, actor)
	notification := &entity.Notification{
		ID:        uuid.NewString(),
		Type:      string(event.Type),
		Title:     title,
		Message:   message,
		ActorID:   event.ActorID,
		ActorName: actor,
		ContentID: event.ContentID,
		CommentID: event.CommentID,
		CreatedAt: createdAt,
	}

	if err := uc.store(ctx, event.RecipientID, notification); err != nil {
		return err
	}
	metrics.NotificationsStored.WithLabelValues(string(event.Type)).Inc()
	uc.logger.Info("[NOTIFICATION HANDLER] Stored %s notification for user %s", event.Type, event.RecipientID)
	return nil
}

func (uc *notificationUseCase) store(ctx context.Context, userID string, notification *entity.Notification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := InboxKey(userID)
	pipe := uc.redisClient.TxPipeline()
	pipe.LPush(ctx, key, body)
	pipe.LTrim(ctx, key, 0, InboxSize-1)
	pipe.Expire(ctx, key, inboxTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification in %s: %w", key, err)
	}

	// Live listeners are best effort; the inbox write above is what counts.
	if err := uc.redisClient.Publish(ctx, key, body).Err(); err != nil {
		uc.logger.Warn("Failed to publish notification on %s: %v", key, err)
	}
	return nil
}

func (uc *notificationUseCase) List(ctx context.Context, userID string, limit, offset int) (*entity.NotificationPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > InboxSize {
		limit = InboxSize
	}
	if offset < 0 {
		return nil, apperr.Kind(apperr.ErrValidation, "offset must not be negative")
	}

	key := InboxKey(userID)
	raw, err := uc.redisClient.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	total, err := uc.redisClient.LLen(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	page := &entity.NotificationPage{
		Notifications: make([]entity.Notification, 0, len(raw)),
		Total:         total,
		Limit:         limit,
		Offset:        offset,
	}
	for _, item := range raw {
		var notification entity.Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			uc.logger.Warn("Skipping unreadable notification in %s: %v", key, err)
			continue
		}
		page.Notifications = append(page.Notifications, notification)
	}
	return page, nil
}

func (uc *notificationUseCase) Clear(ctx context.Context, userID string) error {
	if err := uc.redisClient.Del(ctx, InboxKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

// Stream forwards notifications stored for userID to send until ctx is done
// or send fails.
func (uc *notificationUseCase) Stream(ctx context.Context, userID string, send func(entity.Notification) error) error {
	channel := InboxKey(userID)
	pubsub := uc.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var notification entity.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				uc.logger.Warn("Skipping unreadable notification on %s: %v", channel, err)
				continue
			}
			if err := send(notification); err != nil {
				return err
			}
		}
	}
}
