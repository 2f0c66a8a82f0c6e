package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	_ "time/tzdata"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedFixture(t *testing.T) {
	f, err := os.Open("../seed/restaurants.yaml")
	require.NoError(t, err)
	defer f.Close()

	restaurants, err := loadSeed(f)
	require.NoError(t, err)
	require.Len(t, restaurants, 4)

	lucia := restaurants[0]
	assert.Equal(t, "Trattoria Da Lucia", lucia.Name)
	assert.Equal(t, []string{"italian", "pasta", "family friendly"}, lucia.CuisineTags)
	assert.Len(t, lucia.Schedule["friday"], 2)
	assert.NotContains(t, lucia.Schedule, "monday")
	assert.True(t, lucia.IsPublished)
	require.NotNil(t, lucia.Phone)
	assert.Nil(t, lucia.Website)

	assert.False(t, restaurants[3].IsPublished)
	for _, r := range restaurants {
		assert.NoError(t, r.Schedule.Validate(), r.Name)
	}
}

func TestLoadSeedStableIDs(t *testing.T) {
	doc := `
restaurants:
  - {name: Alpha, address: 1 Main St, city: Oslo, price_level: 2}
`
	first, err := loadSeed(strings.NewReader(doc))
	require.NoError(t, err)
	second, err := loadSeed(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, seedID("alpha", "OSLO"), first[0].ID)
}

func TestLoadSeedRejects(t *testing.T) {
	tests := map[string]string{
		"missing name": `
restaurants:
  - {address: 1 Main St, city: Oslo, price_level: 2}`,
		"price out of range": `
restaurants:
  - {name: A, address: 1 Main St, city: Oslo, price_level: 5}`,
		"bad schedule": `
restaurants:
  - name: A
    address: 1 Main St
    city: Oslo
    price_level: 2
    schedule:
      funday: [{open: "09:00", close: "10:00"}]`,
		"bad timezone": `
restaurants:
  - {name: A, address: 1 Main St, city: Oslo, price_level: 2, timezone: Not/AZone}`,
		"unknown field": `
restaurants:
  - {name: A, address: 1 Main St, city: Oslo, price_level: 2, stars: 3}`,
		"duplicate": `
restaurants:
  - {name: A, address: 1 Main St, city: Oslo, price_level: 2}
  - {name: a, address: 2 Main St, city: oslo, price_level: 3}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadSeed(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeedEmpty(t *testing.T) {
	restaurants, err := loadSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, restaurants)
}

type seedRestaurants struct {
	repository.RestaurantRepository
	rows    map[uuid.UUID]*entity.Restaurant
	failOn  string
	created []string
}

// IDTaken sees soft-deleted rows too, like the SQL implementation.
func (s *seedRestaurants) IDTaken(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.rows[id]
	return ok, nil
}

func (s *seedRestaurants) Create(_ context.Context, r *entity.Restaurant) error {
	if r.Name == s.failOn {
		return errors.New("insert failed")
	}
	s.rows[r.ID] = r
	s.created = append(s.created, r.Name)
	return nil
}

func TestApplySeedSkipsExisting(t *testing.T) {
	now := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	a := &entity.Restaurant{Base: entity.Base{ID: seedID("a", "x")}, Name: "A"}
	b := &entity.Restaurant{Base: entity.Base{ID: seedID("b", "x")}, Name: "B"}

	repo := &seedRestaurants{rows: map[uuid.UUID]*entity.Restaurant{a.ID: a}}

	created, err := applySeed(context.Background(), repo, []*entity.Restaurant{a, b}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"B"}, repo.created)
	assert.Equal(t, now, b.CreatedAt)

	created, err = applySeed(context.Background(), repo, []*entity.Restaurant{a, b}, now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestApplySeedSkipsSoftDeleted(t *testing.T) {
	deletedAt := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	gone := &entity.Restaurant{Base: entity.Base{ID: seedID("gone", "x"), DeletedAt: &deletedAt}, Name: "Gone"}
	repo := &seedRestaurants{rows: map[uuid.UUID]*entity.Restaurant{gone.ID: gone}}

	again := &entity.Restaurant{Base: entity.Base{ID: seedID("gone", "x")}, Name: "Gone"}
	created, err := applySeed(context.Background(), repo, []*entity.Restaurant{again}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, repo.created)
}

func TestApplySeedStopsOnError(t *testing.T) {
	repo := &seedRestaurants{rows: map[uuid.UUID]*entity.Restaurant{}, failOn: "B"}
	list := []*entity.Restaurant{
		{Base: entity.Base{ID: seedID("a", "x")}, Name: "A"},
		{Base: entity.Base{ID: seedID("b", "x")}, Name: "B"},
	}

	created, err := applySeed(context.Background(), repo, list, time.Now())
	assert.ErrorContains(t, err, "create B")
	assert.Equal(t, 1, created)
}

type seedUsers struct {
	repository.UserRepository
	byEmail  map[string]*entity.User
	promoted []uuid.UUID
}

func (s *seedUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return s.byEmail[email], nil
}

func (s *seedUsers) Create(_ context.Context, u *entity.User) error {
	s.byEmail[u.Email] = u
	return nil
}

func (s *seedUsers) UpdateRole(_ context.Context, id uuid.UUID, role entity.UserRole) error {
	s.promoted = append(s.promoted, id)
	return nil
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("creates verified admin", func(t *testing.T) {
		users := &seedUsers{byEmail: map[string]*entity.User{}}
		require.NoError(t, seedAdmin(ctx, users, "root", " Root@Example.com ", "s3cret-pass", now))

		admin := users.byEmail["root@example.com"]
		require.NotNil(t, admin)
		assert.Equal(t, entity.RoleAdmin, admin.Role)
		assert.True(t, admin.EmailVerified)
		assert.True(t, admin.IsActive)
		assert.NotEqual(t, "s3cret-pass", admin.PasswordHash)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		existing := &entity.User{Base: entity.Base{ID: uuid.New()}, Email: "a@example.com", Role: entity.RoleUser}
		users := &seedUsers{byEmail: map[string]*entity.User{"a@example.com": existing}}

		require.NoError(t, seedAdmin(ctx, users, "a", "a@example.com", "", now))
		assert.Equal(t, []uuid.UUID{existing.ID}, users.promoted)
	})

	t.Run("short password", func(t *testing.T) {
		users := &seedUsers{byEmail: map[string]*entity.User{}}
		assert.Error(t, seedAdmin(ctx, users, "a", "new@example.com", "short", now))
	})
}
