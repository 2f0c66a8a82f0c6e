package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"restaurant-directory/internal/data/entity"
	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/schedule"
	"restaurant-directory/pkg/database"
	"restaurant-directory/pkg/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var seedOpts struct {
	file          string
	adminUsername string
	adminEmail    string
	adminPassword string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load restaurants from a YAML file and bootstrap an admin",
	Long: `seed inserts the restaurants listed in the YAML file. Restaurant IDs are
derived from name and city, so running seed twice does not duplicate rows.

When --admin-email is given the account is created (or promoted) as ADMIN.`,
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.file, "file", "seed/restaurants.yaml", "restaurant fixture file")
	f.StringVar(&seedOpts.adminUsername, "admin-username", "admin", "username of the bootstrap admin")
	f.StringVar(&seedOpts.adminEmail, "admin-email", "", "email of the bootstrap admin")
	f.StringVar(&seedOpts.adminPassword, "admin-password", "", "password of the bootstrap admin")
}

type seedFile struct {
	Restaurants []seedRestaurant `yaml:"restaurants"`
}

type seedRestaurant struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Address     string                  `yaml:"address"`
	City        string                  `yaml:"city"`
	Phone       string                  `yaml:"phone"`
	Website     string                  `yaml:"website"`
	PriceLevel  int                     `yaml:"price_level"`
	CuisineTags []string                `yaml:"cuisine_tags"`
	Timezone    string                  `yaml:"timezone"`
	Schedule    schedule.WeeklySchedule `yaml:"schedule"`
	Published   *bool                   `yaml:"published"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(seedOpts.file)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	restaurants, err := loadSeed(f)
	if err != nil {
		return fmt.Errorf("%s: %w", seedOpts.file, err)
	}

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	repos := repository.NewRepository(db, logger)

	if seedOpts.adminEmail != "" {
		if err := seedAdmin(ctx, repos.User, seedOpts.adminUsername, seedOpts.adminEmail, seedOpts.adminPassword, time.Now()); err != nil {
			return err
		}
		logger.Info("Admin account ready", zap.String("email", seedOpts.adminEmail))
	}

	created, err := applySeed(ctx, repos.Restaurant, restaurants, time.Now())
	if err != nil {
		return err
	}
	logger.Info("Seed complete",
		zap.Int("restaurants", len(restaurants)),
		zap.Int("created", created),
	)
	return nil
}

// loadSeed decodes and validates a restaurant fixture.
func loadSeed(r io.Reader) ([]*entity.Restaurant, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file seedFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]*entity.Restaurant, 0, len(file.Restaurants))
	seen := make(map[uuid.UUID]string, len(file.Restaurants))
	for i, sr := range file.Restaurants {
		restaurant, err := sr.toEntity()
		if err != nil {
			return nil, fmt.Errorf("restaurant #%d (%s): %w", i+1, sr.Name, err)
		}
		if prev, dup := seen[restaurant.ID]; dup {
			return nil, fmt.Errorf("restaurant #%d duplicates %q", i+1, prev)
		}
		seen[restaurant.ID] = restaurant.Name
		out = append(out, restaurant)
	}
	return out, nil
}

func (sr seedRestaurant) toEntity() (*entity.Restaurant, error) {
	name := strings.TrimSpace(sr.Name)
	city := strings.TrimSpace(sr.City)
	address := strings.TrimSpace(sr.Address)
	switch {
	case name == "":
		return nil, errors.New("name is required")
	case city == "":
		return nil, errors.New("city is required")
	case address == "":
		return nil, errors.New("address is required")
	case sr.PriceLevel < 1 || sr.PriceLevel > 4:
		return nil, fmt.Errorf("price_level %d out of range 1-4", sr.PriceLevel)
	}

	hours := sr.Schedule.Normalize()
	if err := hours.Validate(); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if sr.Timezone != "" {
		if _, err := time.LoadLocation(sr.Timezone); err != nil {
			return nil, fmt.Errorf("timezone: %w", err)
		}
	}

	published := true
	if sr.Published != nil {
		published = *sr.Published
	}

	return &entity.Restaurant{
		Base:        entity.Base{ID: seedID(name, city)},
		Name:        name,
		Description: optional(sr.Description),
		Address:     address,
		City:        city,
		Phone:       optional(sr.Phone),
		Website:     optional(sr.Website),
		PriceLevel:  sr.PriceLevel,
		CuisineTags: utils.NormalizeTags(sr.CuisineTags),
		Schedule:    hours,
		Timezone:    sr.Timezone,
		ImageURLs:   []string{},
		IsPublished: published,
	}, nil
}

// seedID is stable across runs for the same name and city.
func seedID(name, city string) uuid.UUID {
	key := strings.ToLower(name) + "|" + strings.ToLower(city)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("restaurant:"+key))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// applySeed inserts restaurants whose id is not in use yet and returns how
// many were created.
func applySeed(ctx context.Context, repo repository.RestaurantRepository, restaurants []*entity.Restaurant, now time.Time) (int, error) {
	created := 0
	for _, restaurant := range restaurants {
		// Soft-deleted rows keep their id, so a deleted seed stays deleted.
		taken, err := repo.IDTaken(ctx, restaurant.ID)
		if err != nil {
			return created, err
		}
		if taken {
			continue
		}

		restaurant.CreatedAt = now
		restaurant.UpdatedAt = now
		if err := repo.Create(ctx, restaurant); err != nil {
			return created, fmt.Errorf("create %s: %w", restaurant.Name, err)
		}
		created++
	}
	return created, nil
}

// seedAdmin creates an active, verified ADMIN or promotes an existing account.
func seedAdmin(ctx context.Context, users repository.UserRepository, username, email, password string, now time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Role == entity.RoleAdmin {
			return nil
		}
		return users.UpdateRole(ctx, existing.ID, entity.RoleAdmin)
	}

	if len(password) < 8 {
		return errors.New("--admin-password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return users.Create(ctx, &entity.User{
		Base: entity.NewBase(now),
		Username:      strings.TrimSpace(username),
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.RoleAdmin,
		EmailVerified: true,
		IsActive:      true,
	})
}
