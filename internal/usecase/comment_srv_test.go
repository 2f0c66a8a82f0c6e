package usecase

import (
	"context"
	"strings"
	"testing"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateCommentNotifiesOwner(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCommentService(store.repo, zap.NewNop())

	owner := store.addUser("owner", entity.RoleClient)
	alice := store.addUser("alice", entity.RoleUser)
	restaurant := store.addRestaurant("Bistro", func(r *entity.Restaurant) { r.OwnerID = &owner.ID })

	resp, err := svc.CreateComment(ctx, alice.ID.String(), restaurant.ID.String(), &request.CommentRequest{Content: "  Great soup  "})
	require.NoError(t, err)
	assert.Equal(t, "Great soup", resp.Content)
	assert.Equal(t, "alice", resp.Username)

	require.Len(t, store.notifications.notifications, 1)
	for _, n := range store.notifications.notifications {
		assert.Equal(t, entity.NotificationNewComment, n.Type)
		assert.True(t, n.TargetsUser(owner.ID))
	}

	// The owner commenting on their own restaurant is not notified.
	_, err = svc.CreateComment(ctx, owner.ID.String(), restaurant.ID.String(), &request.CommentRequest{Content: "Thanks!"})
	require.NoError(t, err)
	assert.Len(t, store.notifications.notifications, 1)

	list, err := svc.ListComments(ctx, restaurant.ID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Pagination.Total)
	assert.Len(t, list.Data, 2)
}

func TestCreateCommentRejects(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCommentService(store.repo, zap.NewNop())

	alice := store.addUser("alice", entity.RoleUser)
	restaurant := store.addRestaurant("Bistro", nil)
	draft := store.addRestaurant("Draft", func(r *entity.Restaurant) { r.IsPublished = false })

	_, err := svc.CreateComment(ctx, alice.ID.String(), restaurant.ID.String(), &request.CommentRequest{Content: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateComment(ctx, alice.ID.String(), restaurant.ID.String(), &request.CommentRequest{Content: strings.Repeat("a", 1001)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateComment(ctx, "", restaurant.ID.String(), &request.CommentRequest{Content: "hello"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreateComment(ctx, alice.ID.String(), draft.ID.String(), &request.CommentRequest{Content: "hello"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, store.comments.comments)
}

func TestUpdateAndDeleteCommentPermissions(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewCommentService(store.repo, zap.NewNop())

	alice := store.addUser("alice", entity.RoleUser)
	bob := store.addUser("bob", entity.RoleUser)
	admin := store.addUser("admin", entity.RoleAdmin)
	restaurant := store.addRestaurant("Bistro", nil)

	comment, err := svc.CreateComment(ctx, alice.ID.String(), restaurant.ID.String(), &request.CommentRequest{Content: "first"})
	require.NoError(t, err)

	_, err = svc.UpdateComment(ctx, bob.ID.String(), comment.ID, &request.CommentRequest{Content: "hijacked"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateComment(ctx, admin.ID.String(), comment.ID, &request.CommentRequest{Content: "moderated"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateComment(ctx, alice.ID.String(), comment.ID, &request.CommentRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, svc.DeleteComment(ctx, bob.ID.String(), comment.ID), ErrForbidden)
	require.NoError(t, svc.DeleteComment(ctx, admin.ID.String(), comment.ID))
	assert.ErrorIs(t, svc.DeleteComment(ctx, alice.ID.String(), comment.ID), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteComment(ctx, alice.ID.String(), "not-a-uuid"), ErrInvalidInput)
}
