package usecase

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory repositories used by the service tests.

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) get(match func(*entity.User) bool) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if !u.Deleted() && match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return f.get(func(u *entity.User) bool { return u.ID == id }), nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return f.get(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return f.get(func(u *entity.User) bool { return u.Username == username }), nil
}

func (f *fakeUsers) filtered(role *entity.UserRole) []*entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.User
	for _, u := range f.users {
		if !u.Deleted() && (role == nil || u.Role == *role) {
			cp := *u
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *entity.User) int { return cmp.Compare(a.Username, b.Username) })
	return out
}

func (f *fakeUsers) FindAll(_ context.Context, role *entity.UserRole, limit, offset int) ([]*entity.User, error) {
	all := f.filtered(role)
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *fakeUsers) CountAll(_ context.Context, role *entity.UserRole) (int64, error) {
	return int64(len(f.filtered(role))), nil
}

func (f *fakeUsers) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return errors.New("user not found")
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id uuid.UUID, role entity.UserRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Role = role
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].PasswordHash = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.users[id].DeletedAt = &now
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
}

func (f *fakeSessions) Create(_ context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.Token] = &cp
	return nil
}

func (f *fakeSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok || !s.Active(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[token]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, s := range f.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeSessions) CleanExpiredSessions(context.Context) (int64, error) { return 0, nil }

type fakeOTPs struct {
	mu   sync.Mutex
	otps []*entity.OTP
}

func (f *fakeOTPs) Create(_ context.Context, o *entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.otps = append(f.otps, &cp)
	return nil
}

func (f *fakeOTPs) FindValidOTP(_ context.Context, email, code string, otpType entity.OTPType) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.otps {
		if strings.EqualFold(o.Email, email) && o.OTPCode == code && o.OTPType == otpType && !o.IsUsed && !o.Expired(time.Now()) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOTPs) MarkAsUsed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.otps {
		if o.ID == id && !o.IsUsed {
			o.IsUsed = true
			return nil
		}
	}
	return repository.ErrOTPConsumed
}

func (f *fakeOTPs) InvalidateAll(_ context.Context, userID uuid.UUID, otpType entity.OTPType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.otps {
		if o.UserID == userID && o.OTPType == otpType {
			o.IsUsed = true
		}
	}
	return nil
}

func (f *fakeOTPs) latest(otpType entity.OTPType) *entity.OTP {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.otps) - 1; i >= 0; i-- {
		if f.otps[i].OTPType == otpType {
			return f.otps[i]
		}
	}
	return nil
}

type fakeRestaurants struct {
	mu          sync.Mutex
	restaurants map[uuid.UUID]*entity.Restaurant
}

func (f *fakeRestaurants) Create(_ context.Context, r *entity.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.restaurants[r.ID] = &cp
	return nil
}

func (f *fakeRestaurants) FindByID(_ context.Context, id uuid.UUID) (*entity.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok || r.Deleted() {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRestaurants) IDTaken(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.restaurants[id]
	return ok, nil
}

func matches(r *entity.Restaurant, filter repository.RestaurantFilter) bool {
	switch {
	case r.Deleted():
		return false
	case !filter.IncludeUnpublished && !r.IsPublished:
		return false
	case filter.Search != nil && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(*filter.Search)):
		return false
	case filter.City != nil && !strings.Contains(strings.ToLower(r.City), strings.ToLower(*filter.City)):
		return false
	case filter.Cuisine != nil && !slices.Contains(r.CuisineTags, *filter.Cuisine):
		return false
	case filter.PriceLevel != nil && r.PriceLevel != *filter.PriceLevel:
		return false
	case filter.MinRating != nil && r.Rating < *filter.MinRating:
		return false
	case filter.OwnerID != nil && !r.OwnedBy(*filter.OwnerID):
		return false
	case filter.IDs != nil && !slices.Contains(filter.IDs, r.ID):
		return false
	}
	return true
}

func (f *fakeRestaurants) filtered(filter repository.RestaurantFilter) []*entity.Restaurant {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Restaurant
	for _, r := range f.restaurants {
		if matches(r, filter) {
			cp := *r
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Restaurant) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (f *fakeRestaurants) FindAll(_ context.Context, filter repository.RestaurantFilter, limit, offset int) ([]*entity.Restaurant, error) {
	all := f.filtered(filter)
	if limit <= 0 {
		return all, nil
	}
	if offset >= len(all) {
		return []*entity.Restaurant{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *fakeRestaurants) CountAll(_ context.Context, filter repository.RestaurantFilter) (int64, error) {
	return int64(len(f.filtered(filter))), nil
}

func (f *fakeRestaurants) Update(_ context.Context, r *entity.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.restaurants[r.ID]
	if !ok {
		return errors.New("restaurant not found")
	}
	cp := *r
	cp.OwnerID = existing.OwnerID
	cp.Rating = existing.Rating
	cp.VoteCount = existing.VoteCount
	f.restaurants[r.ID] = &cp
	return nil
}

func (f *fakeRestaurants) UpdateRating(_ context.Context, id uuid.UUID, rating float64, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restaurants[id].Rating = rating
	f.restaurants[id].VoteCount = count
	return nil
}

func (f *fakeRestaurants) AppendImage(_ context.Context, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restaurants[id].ImageURLs = append(f.restaurants[id].ImageURLs, url)
	return nil
}

func (f *fakeRestaurants) SetOwner(_ context.Context, id uuid.UUID, owner *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restaurants[id].OwnerID = owner
	return nil
}

func (f *fakeRestaurants) ClearOwner(_ context.Context, owner uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.restaurants {
		if r.OwnerID != nil && *r.OwnerID == owner {
			r.OwnerID = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeRestaurants) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.restaurants[id].DeletedAt = &now
	return nil
}

type fakeVotes struct {
	mu    sync.Mutex
	votes map[string]*entity.Vote
}

func (f *fakeVotes) Upsert(_ context.Context, v *entity.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.votes[v.ID]; ok {
		existing.Rating = v.Rating
		existing.UpdatedAt = v.UpdatedAt
		v.CreatedAt = existing.CreatedAt
		return nil
	}
	cp := *v
	f.votes[v.ID] = &cp
	return nil
}

func (f *fakeVotes) FindByID(_ context.Context, id string) (*entity.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.votes[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVotes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.votes, id)
	return nil
}

func (f *fakeVotes) FindRatingsByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ratings := []int{}
	for _, v := range f.votes {
		if v.RestaurantID == restaurantID {
			ratings = append(ratings, v.Rating)
		}
	}
	return ratings, nil
}

type fakeFavorites struct {
	mu        sync.Mutex
	favorites map[string]*entity.Favorite
}

func (f *fakeFavorites) Add(_ context.Context, fav *entity.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.favorites[fav.ID]; !ok {
		cp := *fav
		f.favorites[fav.ID] = &cp
	}
	return nil
}

func (f *fakeFavorites) Remove(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favorites[id]
	delete(f.favorites, id)
	return ok, nil
}

func (f *fakeFavorites) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favorites[id]
	return ok, nil
}

func (f *fakeFavorites) FindRestaurantIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var favs []*entity.Favorite
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			favs = append(favs, fav)
		}
	}
	slices.SortFunc(favs, func(a, b *entity.Favorite) int { return b.CreatedAt.Compare(a.CreatedAt) })
	ids := []uuid.UUID{}
	for _, fav := range favs {
		ids = append(ids, fav.RestaurantID)
	}
	return ids, nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*entity.Comment
}

func (f *fakeComments) Create(_ context.Context, c *entity.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f *fakeComments) FindByID(_ context.Context, id uuid.UUID) (*entity.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) byRestaurant(restaurantID uuid.UUID) []*entity.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Comment
	for _, c := range f.comments {
		if c.RestaurantID == restaurantID {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (f *fakeComments) FindByRestaurant(_ context.Context, restaurantID uuid.UUID, limit, offset int) ([]*entity.Comment, error) {
	all := f.byRestaurant(restaurantID)
	if offset >= len(all) {
		return []*entity.Comment{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (f *fakeComments) CountByRestaurant(_ context.Context, restaurantID uuid.UUID) (int64, error) {
	return int64(len(f.byRestaurant(restaurantID))), nil
}

func (f *fakeComments) Update(_ context.Context, c *entity.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[c.ID].Content = c.Content
	f.comments[c.ID].UpdatedAt = c.UpdatedAt
	return nil
}

func (f *fakeComments) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.comments, id)
	return nil
}

type fakeNotifications struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*entity.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	cp.ReadBy = slices.Clone(n.ReadBy)
	f.notifications[n.ID] = &cp
	return nil
}

func (f *fakeNotifications) FindByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	cp.ReadBy = slices.Clone(n.ReadBy)
	return &cp, nil
}

func (f *fakeNotifications) where(match func(*entity.Notification) bool) []*entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.Notification{}
	for _, n := range f.notifications {
		if match(n) {
			cp := *n
			cp.ReadBy = slices.Clone(n.ReadBy)
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeNotifications) FindByTargetUser(_ context.Context, userID uuid.UUID) ([]*entity.Notification, error) {
	return f.where(func(n *entity.Notification) bool { return n.TargetsUser(userID) }), nil
}

func (f *fakeNotifications) FindByTargetRole(_ context.Context, role entity.UserRole) ([]*entity.Notification, error) {
	return f.where(func(n *entity.Notification) bool { return n.TargetRole != nil && *n.TargetRole == role }), nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notifications[id]
	if !n.IsReadBy(userID) {
		n.ReadBy = append(n.ReadBy, userID.String())
	}
	return nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uuid.UUID, role entity.UserRole) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for _, n := range f.notifications {
		targeted := n.TargetsUser(userID) || (n.TargetRole != nil && *n.TargetRole == role)
		if targeted && !n.IsReadBy(userID) {
			n.ReadBy = append(n.ReadBy, userID.String())
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotifications) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notifications, id)
	return nil
}

type fakeStore struct {
	users         *fakeUsers
	sessions      *fakeSessions
	otps          *fakeOTPs
	restaurants   *fakeRestaurants
	votes         *fakeVotes
	favorites     *fakeFavorites
	comments      *fakeComments
	notifications *fakeNotifications
	repo          *repository.Repository
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		users:         &fakeUsers{users: map[uuid.UUID]*entity.User{}},
		sessions:      &fakeSessions{sessions: map[uuid.UUID]*entity.Session{}},
		otps:          &fakeOTPs{},
		restaurants:   &fakeRestaurants{restaurants: map[uuid.UUID]*entity.Restaurant{}},
		votes:         &fakeVotes{votes: map[string]*entity.Vote{}},
		favorites:     &fakeFavorites{favorites: map[string]*entity.Favorite{}},
		comments:      &fakeComments{comments: map[uuid.UUID]*entity.Comment{}},
		notifications: &fakeNotifications{notifications: map[uuid.UUID]*entity.Notification{}},
	}
	s.repo = &repository.Repository{
		User:         s.users,
		Session:      s.sessions,
		OTP:          s.otps,
		Restaurant:   s.restaurants,
		Vote:         s.votes,
		Favorite:     s.favorites,
		Comment:      s.comments,
		Notification: s.notifications,
	}
	return s
}

func (s *fakeStore) addUser(username string, role entity.UserRole) *entity.User {
	now := time.Now()
	u := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	_ = s.users.Create(context.Background(), u)
	return u
}

func (s *fakeStore) addRestaurant(name string, mutate func(*entity.Restaurant)) *entity.Restaurant {
	now := time.Now()
	r := &entity.Restaurant{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:        name,
		Address:     "1 Main St",
		City:        "Lyon",
		PriceLevel:  2,
		CuisineTags: []string{},
		ImageURLs:   []string{},
		IsPublished: true,
	}
	if mutate != nil {
		mutate(r)
	}
	_ = s.restaurants.Create(context.Background(), r)
	return r
}
