package usecase

import (
	"context"
	"testing"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/dto/request"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFavoriteTestService(store *fakeStore) *favoriteService {
	svc := NewFavoriteService(store.repo, time.UTC, zap.NewNop()).(*favoriteService)
	clock := time.Date(2026, 10, 12, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newFavoriteTestService(store)

	alice := store.addUser("alice", "USER")
	r := store.addRestaurant("Noodle House", nil)

	for range 2 {
		resp, err := svc.AddFavorite(ctx, alice.ID.String(), r.ID.String())
		require.NoError(t, err)
		assert.True(t, resp.IsFavorite)
	}

	assert.Len(t, store.favorites.favorites, 1)
	assert.Contains(t, store.favorites.favorites, utils.CompositeID(alice.ID, r.ID))

	status, err := svc.IsFavorite(ctx, alice.ID.String(), r.ID.String())
	require.NoError(t, err)
	assert.True(t, status.IsFavorite)
}

func TestAddFavoriteRejects(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newFavoriteTestService(store)

	alice := store.addUser("alice", "USER")
	hidden := store.addRestaurant("Secret Spot", func(r *entity.Restaurant) { r.IsPublished = false })

	_, err := svc.AddFavorite(ctx, "", hidden.ID.String())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.AddFavorite(ctx, alice.ID.String(), hidden.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddFavorite(ctx, alice.ID.String(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddFavorite(ctx, alice.ID.String(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveFavorite(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newFavoriteTestService(store)

	alice := store.addUser("alice", "USER")
	r := store.addRestaurant("Noodle House", nil)

	_, err := svc.AddFavorite(ctx, alice.ID.String(), r.ID.String())
	require.NoError(t, err)

	resp, err := svc.RemoveFavorite(ctx, alice.ID.String(), r.ID.String())
	require.NoError(t, err)
	assert.False(t, resp.IsFavorite)
	assert.Empty(t, store.favorites.favorites)

	// Removing again is not an error.
	_, err = svc.RemoveFavorite(ctx, alice.ID.String(), r.ID.String())
	assert.NoError(t, err)
}

func TestListFavorites(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newFavoriteTestService(store)

	alice := store.addUser("alice", "USER")
	bob := store.addUser("bob", "USER")
	first := store.addRestaurant("First", nil)
	second := store.addRestaurant("Second", nil)
	third := store.addRestaurant("Third", nil)

	for _, r := range []uuid.UUID{first.ID, second.ID, third.ID} {
		_, err := svc.AddFavorite(ctx, alice.ID.String(), r.String())
		require.NoError(t, err)
	}
	_, err := svc.AddFavorite(ctx, bob.ID.String(), first.ID.String())
	require.NoError(t, err)

	// Unpublished after being favorited: dropped from the list.
	store.restaurants.restaurants[second.ID].IsPublished = false

	got, err := svc.ListFavorites(ctx, alice.ID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "Third", got.Data[0].Name)
	assert.Equal(t, "First", got.Data[1].Name)
	assert.EqualValues(t, 2, got.Pagination.Total)

	paged, err := svc.ListFavorites(ctx, alice.ID.String(), &request.PaginatedRequest{Page: 2, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, paged.Data, 1)
	assert.Equal(t, "First", paged.Data[0].Name)
	assert.Equal(t, 2, paged.Pagination.TotalPages)

	empty, err := svc.ListFavorites(ctx, store.addUser("carol", "USER").ID.String(), &request.PaginatedRequest{})
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.Equal(t, 1, empty.Pagination.Page)
}
