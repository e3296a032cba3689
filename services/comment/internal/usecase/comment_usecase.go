package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/database"
	"animov/pkg/logger"
	"animov/pkg/queue"
	"animov/services/comment/internal/entity"
	"animov/services/comment/internal/repo/persistent"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxTextLength   = 2000
)

var (
	ErrNotCommentOwner = apperr.Kind(apperr.ErrForbidden, "only the author can change this comment")
	ErrReplyRating     = apperr.Kind(apperr.ErrValidation, "replies cannot carry a rating")
	ErrParentMismatch  = apperr.Kind(apperr.ErrValidation, "a reply must be on the same content as its parent")
)

type CommentUseCase interface {
	Create(ctx context.Context, userID string, in entity.CommentInput) (*entity.Comment, error)
	List(ctx context.Context, viewerID string, q entity.ListQuery) (*entity.CommentPage, error)
	Update(ctx context.Context, userID, id string, patch entity.CommentPatch) (*entity.Comment, error)
	Delete(ctx context.Context, userID, id string) error
	Like(ctx context.Context, userID, id string) (*entity.LikeState, error)
	Unlike(ctx context.Context, userID, id string) (*entity.LikeState, error)
	Rating(ctx context.Context, contentID string, contentType content.Type) (*entity.RatingSummary, error)
}

type commentUseCase struct {
	commentRepo persistent.CommentRepository
	publisher   queue.Publisher
	logger      *logger.Logger
}

// NewCommentUseCase builds the use case. publisher may be nil, in which case
// reply and like events are not emitted.
func NewCommentUseCase(commentRepo persistent.CommentRepository, publisher queue.Publisher, logger *logger.Logger) CommentUseCase {
	return &commentUseCase{
		commentRepo: commentRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Kind(apperr.ErrValidation, "text is required")
	}
	if len([]rune(text)) > MaxTextLength {
		return "", apperr.Kind(apperr.ErrValidation, fmt.Sprintf("text must be at most %d characters", MaxTextLength))
	}
	return text, nil
}

func validateRating(rating *int) error {
	if rating != nil && (*rating < entity.MinRating || *rating > entity.MaxRating) {
		return apperr.Kind(apperr.ErrValidation, fmt.Sprintf("rating must be between %d and %d", entity.MinRating, entity.MaxRating))
	}
	return nil
}

func (uc *commentUseCase) Create(ctx context.Context, userID string, in entity.CommentInput) (*entity.Comment, error) {
	contentID, err := content.Namespace(in.ContentType, in.ContentID)
	if err != nil {
		return nil, err
	}
	text, err := validateText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		UserID:      userID,
		ContentID:   contentID,
		ContentType: in.ContentType,
		Rating:      in.Rating,
		Text:        text,
	}

	var parent *entity.Comment
	if in.ParentID != "" {
		if in.Rating != nil {
			return nil, ErrReplyRating
		}
		parent, err = uc.commentRepo.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ContentID != contentID || parent.ContentType != in.ContentType {
			return nil, ErrParentMismatch
		}
		comment.ParentID = &parent.ID
	}

	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if parent != nil && parent.UserID != userID {
		uc.publish(ctx, queue.EventCommentReply, parent.UserID, userID, comment)
	}

	view, err := uc.commentRepo.GetView(ctx, userID, comment.ID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (uc *commentUseCase) List(ctx context.Context, viewerID string, q entity.ListQuery) (*entity.CommentPage, error) {
	contentID, err := content.Namespace(q.ContentType, q.ContentID)
	if err != nil {
		return nil, err
	}
	q.ContentID = contentID
	if q.ParentID != "" && !database.ValidID(q.ParentID) {
		return nil, apperr.Kind(apperr.ErrValidation, "invalid parentId")
	}

	switch {
	case q.Limit <= 0:
		q.Limit = DefaultPageSize
	case q.Limit > MaxPageSize:
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	comments, err := uc.commentRepo.List(ctx, viewerID, q)
	if err != nil {
		return nil, err
	}
	return &entity.CommentPage{Comments: comments, Limit: q.Limit, Offset: q.Offset}, nil
}

// owned loads the comment and checks that userID wrote it.
func (uc *commentUseCase) owned(ctx context.Context, userID, id string) (*entity.Comment, error) {
	comment, err := uc.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotCommentOwner
	}
	return comment, nil
}

func (uc *commentUseCase) Update(ctx context.Context, userID, id string, patch entity.CommentPatch) (*entity.Comment, error) {
	comment, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Text != nil {
		text, err := validateText(*patch.Text)
		if err != nil {
			return nil, err
		}
		fields["text"] = text
	}
	if patch.Rating != nil {
		if comment.IsReply() {
			return nil, ErrReplyRating
		}
		if err := validateRating(patch.Rating); err != nil {
			return nil, err
		}
		fields["rating"] = *patch.Rating
	}

	if len(fields) > 0 {
		if err := uc.commentRepo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return uc.commentRepo.GetView(ctx, userID, id)
}

func (uc *commentUseCase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.owned(ctx, userID, id); err != nil {
		return err
	}

	removed, err := uc.commentRepo.DeleteThread(ctx, id)
	if err != nil {
		return err
	}
	if removed > 1 {
		uc.logger.Info("Deleted comment %s with %d replies", id, removed-1)
	}
	return nil
}

func (uc *commentUseCase) Like(ctx context.Context, userID, id string) (*entity.LikeState, error) {
	comment, err := uc.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	added, err := uc.commentRepo.Like(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if added && comment.UserID != userID {
		uc.publish(ctx, queue.EventCommentLike, comment.UserID, userID, comment)
	}

	return uc.likeState(ctx, id, true)
}

func (uc *commentUseCase) Unlike(ctx context.Context, userID, id string) (*entity.LikeState, error) {
	if _, err := uc.commentRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := uc.commentRepo.Unlike(ctx, id, userID); err != nil {
		return nil, err
	}
	return uc.likeState(ctx, id, false)
}

func (uc *commentUseCase) likeState(ctx context.Context, id string, liked bool) (*entity.LikeState, error) {
	count, err := uc.commentRepo.LikeCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.LikeState{Liked: liked, LikeCount: count}, nil
}

func (uc *commentUseCase) Rating(ctx context.Context, contentID string, contentType content.Type) (*entity.RatingSummary, error) {
	namespaced, err := content.Namespace(contentType, contentID)
	if err != nil {
		return nil, err
	}

	counts, err := uc.commentRepo.RatingHistogram(ctx, namespaced, contentType)
	if err != nil {
		return nil, err
	}

	summary := &entity.RatingSummary{
		ContentID: namespaced,
		Histogram: make(map[int]int64, entity.MaxRating),
	}
	var total int64
	for rating := entity.MinRating; rating <= entity.MaxRating; rating++ {
		n := counts[rating]
		summary.Histogram[rating] = n
		summary.Count += n
		total += int64(rating) * n
	}
	if summary.Count > 0 {
		summary.Average = math.Round(float64(total)/float64(summary.Count)*100) / 100
	}
	return summary, nil
}

func (uc *commentUseCase) publish(ctx context.Context, eventType queue.EventType, recipientID, actorID string, comment *entity.Comment) {
	if uc.publisher == nil {
		return
	}

	event := queue.Event{
		Type:        eventType,
		RecipientID: recipientID,
		ActorID:     actorID,
		ContentID:   comment.ContentID,
		CommentID:   comment.ID,
		OccurredAt:  time.Now().UTC(),
	}
	if author, err := uc.commentRepo.GetAuthor(ctx, actorID); err == nil {
		event.ActorName = author.Name()
	}

	queue.PublishAsync(uc.publisher, event, func(err error) {
		uc.logger.Error("Failed to publish %s event for comment %s: %v", eventType, comment.ID, err)
	})
}
