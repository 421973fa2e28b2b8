package generators

import (
	"context"
	"fmt"
	"time"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext behind every generated account.
const DefaultPassword = "123456"

const day = 24 * time.Hour

// Users writes user_auth and its one-to-one user_profile.
type Users struct{}

func (*Users) Name() string        { return "users" }
func (*Users) DependsOn() []string { return nil }
func (*Users) Tables() []string    { return []string{"user_auth", "user_profile"} }

func (*Users) Estimate(cfg *config.Config) int { return 2 * cfg.Counts.Users }

func (*Users) Rollups() []fixture.Rollup { return nil }

func (u *Users) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	cfg := gc.Config
	roles, err := fixture.NewWeightedSampler([]string{"user", "admin"}, cfg.Weights.UserRole)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("user_role: %w", err)
	}
	accountStatus, err := fixture.NewWeightedSampler([]int{0, 1, 2}, cfg.Weights.AccountStatus)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("account_status: %w", err)
	}

	// One hash for everyone; bcrypt per row would dominate the run.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("failed to hash default password: %w", err)
	}

	return commitRun(ctx, gc, u.Name(), func(c *fixture.BatchCommitter) (int, error) {
		f := gc.Faker
		for i := 0; i < cfg.Counts.Users; i++ {
			createdAt := gc.Since(2 * 365 * day)
			username := f.Username()

			auth := fixture.Row{
				"username":           username,
				"password_hash":      string(hash),
				"email":              f.Email(),
				"role":               roles.Sample(gc.Rand),
				"auth_status":        1,
				"account_status":     accountStatus.Sample(gc.Rand),
				"last_login_time":    nil,
				"last_login_ip":      nil,
				"failed_login_count": gc.Between(0, 10),
				"created_at":         createdAt,
				"updated_at":         gc.After(createdAt),
			}
			if gc.Chance(0.7) {
				auth["last_login_time"] = gc.After(createdAt)
				auth["last_login_ip"] = f.IPv4()
			}
			userID, err := c.Stage(ctx, "user_auth", auth)
			if err != nil {
				return 0, err
			}

			province, city := f.Region()
			profile := fixture.Row{
				"user_id":    userID,
				"nickname":   f.Nickname(),
				"bio":        optional(gc, 0.5, f.Bio),
				"avatar_url": optional(gc, 0.7, func() string { return f.ImageURL(200, 200) }),
				"phone":      optional(gc, 0.6, f.Phone),
				"gender":     gc.Between(0, 2),
				"birthday":   nil,
				"province":   province,
				"city":       city,
				"website":    optional(gc, 0.3, f.URL),
				"github":     optional(gc, 0.4, func() string { return "https://github.com/" + username }),
				"created_at": createdAt,
				"updated_at": gc.After(createdAt),
			}
			if gc.Chance(0.7) {
				profile["birthday"] = f.Birthday(18, 60)
			}
			if _, err := c.Stage(ctx, "user_profile", profile); err != nil {
				return 0, err
			}

			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}

// optional returns gen() with probability p and nil (NULL) otherwise.
func optional(gc *fixture.GenContext, p float64, gen func() string) any {
	if gc.Chance(p) {
		return gen()
	}
	return nil
}
