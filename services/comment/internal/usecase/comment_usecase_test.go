package usecase

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/dbtest"
	"animov/pkg/logger"
	"animov/pkg/queue"
	"animov/services/comment/internal/entity"
	"animov/services/comment/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events chan queue.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan queue.Event, 16)}
}

func (p *recordingPublisher) Publish(event queue.Event) error {
	p.events <- event
	return nil
}

func (p *recordingPublisher) next(t *testing.T) queue.Event {
	t.Helper()
	select {
	case event := <-p.events:
		return event
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return queue.Event{}
	}
}

func (p *recordingPublisher) assertNone(t *testing.T) {
	t.Helper()
	select {
	case event := <-p.events:
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	uc        CommentUseCase
	publisher *recordingPublisher
	alice     string
	bob       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	publisher := newRecordingPublisher()
	return &fixture{
		uc:        NewCommentUseCase(persistent.NewCommentRepository(db), publisher, logger.NewWithOptions(io.Discard, "info", false)),
		publisher: publisher,
		alice:     alice.ID,
		bob:       bob.ID,
	}
}

func intPtr(n int) *int { return &n }

func TestCreate_NamespacesAndValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "1399", ContentType: content.TypeTV, Text: "  Winter is coming  ", Rating: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, "tv-1399", comment.ContentID)
	assert.Equal(t, "Winter is coming", comment.Text)
	assert.Equal(t, "alice", comment.Author.Username)

	cases := []entity.CommentInput{
		{ContentID: "1399", ContentType: content.TypeTV, Text: "   "},
		{ContentID: "1399", ContentType: content.TypeTV, Text: strings.Repeat("a", MaxTextLength+1)},
		{ContentID: "1399", ContentType: content.TypeTV, Text: "ok", Rating: intPtr(0)},
		{ContentID: "1399", ContentType: content.TypeTV, Text: "ok", Rating: intPtr(11)},
		{ContentID: "movie-1399", ContentType: content.TypeTV, Text: "ok"},
	}
	for _, in := range cases {
		_, err := f.uc.Create(ctx, f.alice, in)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestCreate_ReplyRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "anime-1", ContentType: content.TypeAnime, Text: "Great"})
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, f.bob, entity.CommentInput{ContentID: "anime-1", ContentType: content.TypeAnime, Text: "Agreed", ParentID: parent.ID, Rating: intPtr(7)})
	assert.ErrorIs(t, err, ErrReplyRating)

	_, err = f.uc.Create(ctx, f.bob, entity.CommentInput{ContentID: "anime-2", ContentType: content.TypeAnime, Text: "Agreed", ParentID: parent.ID})
	assert.ErrorIs(t, err, ErrParentMismatch)

	_, err = f.uc.Create(ctx, f.bob, entity.CommentInput{ContentID: "anime-1", ContentType: content.TypeAnime, Text: "Agreed", ParentID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	reply, err := f.uc.Create(ctx, f.bob, entity.CommentInput{ContentID: "anime-1", ContentType: content.TypeAnime, Text: "Agreed", ParentID: parent.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	event := f.publisher.next(t)
	assert.Equal(t, queue.EventCommentReply, event.Type)
	assert.Equal(t, f.alice, event.RecipientID)
	assert.Equal(t, f.bob, event.ActorID)
	assert.Equal(t, "bob", event.ActorName)
	assert.Equal(t, reply.ID, event.CommentID)

	_, err = f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "anime-1", ContentType: content.TypeAnime, Text: "Thanks", ParentID: parent.ID})
	require.NoError(t, err)
	f.publisher.assertNone(t)
}

func TestList_PagingDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "book-abc", ContentType: content.TypeBook, Text: "root"})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, f.bob, entity.CommentInput{ContentID: "book-abc", ContentType: content.TypeBook, Text: "reply", ParentID: parent.ID})
	require.NoError(t, err)

	page, err := f.uc.List(ctx, f.bob, entity.ListQuery{ContentID: "abc", ContentType: content.TypeBook})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Limit)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, int64(1), page.Comments[0].ReplyCount)

	page, err = f.uc.List(ctx, f.bob, entity.ListQuery{ContentID: "book-abc", ContentType: content.TypeBook, ParentID: parent.ID, Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)
	assert.Zero(t, page.Offset)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "reply", page.Comments[0].Text)

	_, err = f.uc.List(ctx, f.bob, entity.ListQuery{ContentID: "book-abc", ContentType: content.TypeBook, ParentID: "nope"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "movie-603", ContentType: content.TypeMovie, Text: "Whoa", Rating: intPtr(8)})
	require.NoError(t, err)

	text := "I know kung fu"
	_, err = f.uc.Update(ctx, f.bob, comment.ID, entity.CommentPatch{Text: &text})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(ctx, f.bob, comment.ID), apperr.ErrForbidden)

	updated, err := f.uc.Update(ctx, f.alice, comment.ID, entity.CommentPatch{Text: &text, Rating: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, text, updated.Text)
	assert.Equal(t, 10, *updated.Rating)

	reply, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "movie-603", ContentType: content.TypeMovie, Text: "also", ParentID: comment.ID})
	require.NoError(t, err)
	_, err = f.uc.Update(ctx, f.alice, reply.ID, entity.CommentPatch{Rating: intPtr(5)})
	assert.ErrorIs(t, err, ErrReplyRating)

	require.NoError(t, f.uc.Delete(ctx, f.alice, comment.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, f.alice, comment.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, f.alice, reply.ID), apperr.ErrNotFound)
}

func TestLike_PublishesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	comment, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "manga-2", ContentType: content.TypeManga, Text: "Guts"})
	require.NoError(t, err)

	state, err := f.uc.Like(ctx, f.bob, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LikeState{Liked: true, LikeCount: 1}, *state)

	event := f.publisher.next(t)
	assert.Equal(t, queue.EventCommentLike, event.Type)
	assert.Equal(t, f.alice, event.RecipientID)

	state, err = f.uc.Like(ctx, f.bob, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.LikeCount)
	f.publisher.assertNone(t)

	_, err = f.uc.Like(ctx, f.alice, comment.ID)
	require.NoError(t, err)
	f.publisher.assertNone(t)

	state, err = f.uc.Unlike(ctx, f.bob, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LikeState{Liked: false, LikeCount: 1}, *state)

	state, err = f.uc.Unlike(ctx, f.bob, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.LikeCount)

	_, err = f.uc.Like(ctx, f.bob, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRating_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, r := range []int{7, 8, 8} {
		_, err := f.uc.Create(ctx, f.alice, entity.CommentInput{ContentID: "anime-5114", ContentType: content.TypeAnime, Text: "x", Rating: intPtr(r)})
		require.NoError(t, err)
	}

	summary, err := f.uc.Rating(ctx, "5114", content.TypeAnime)
	require.NoError(t, err)
	assert.Equal(t, "anime-5114", summary.ContentID)
	assert.Equal(t, int64(3), summary.Count)
	assert.Equal(t, 7.67, summary.Average)
	assert.Len(t, summary.Histogram, 10)
	assert.Equal(t, int64(2), summary.Histogram[8])
	assert.Zero(t, summary.Histogram[1])

	empty, err := f.uc.Rating(ctx, "anime-1", content.TypeAnime)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)
	assert.Len(t, empty.Histogram, 10)
}

func TestNilPublisher(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	uc := NewCommentUseCase(persistent.NewCommentRepository(db), nil, logger.NewWithOptions(io.Discard, "info", false))
	ctx := context.Background()

	comment, err := uc.Create(ctx, alice.ID, entity.CommentInput{ContentID: "tv-1", ContentType: content.TypeTV, Text: "x"})
	require.NoError(t, err)
	_, err = uc.Like(ctx, bob.ID, comment.ID)
	assert.NoError(t, err)
}
