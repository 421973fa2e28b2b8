package generators

import (
	"context"
	"fmt"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
)

// loginUserLimit caps how many users receive login history.
const loginUserLimit = 50000

type loginUser struct {
	id       int64
	username string
}

// LoginHistory writes 1..max login attempts for each user.
type LoginHistory struct{}

func (*LoginHistory) Name() string        { return "login_history" }
func (*LoginHistory) DependsOn() []string { return []string{"users"} }
func (*LoginHistory) Tables() []string    { return []string{"user_login_history"} }

func (*LoginHistory) Estimate(cfg *config.Config) int {
	return min(cfg.Counts.Users, loginUserLimit) * (1 + cfg.Counts.LoginHistoryMaxPerUser) / 2
}

func (*LoginHistory) Rollups() []fixture.Rollup { return nil }

func (g *LoginHistory) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	status, err := fixture.NewWeightedSampler([]int{0, 1}, gc.Config.Weights.LoginStatus)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("login_status: %w", err)
	}
	users, err := loadLoginUsers(ctx, gc)
	if err != nil {
		return fixture.Stats{}, err
	}
	if len(users) == 0 {
		return fixture.Stats{}, &fixture.EmptyParentPoolError{Table: "user_auth"}
	}

	maxPerUser := gc.Config.Counts.LoginHistoryMaxPerUser
	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		if maxPerUser == 0 {
			return 0, nil
		}
		f := gc.Faker
		for _, u := range users {
			for i, n := 0, gc.Between(1, maxPerUser); i < n; i++ {
				at := gc.Since(2 * 365 * day)
				st := status.Sample(gc.Rand)
				var province, city any
				if st == 1 && gc.Chance(0.9) {
					province, city = f.Region()
				}
				if _, err := c.Stage(ctx, "user_login_history", fixture.Row{
					"user_id":      u.id,
					"username":     u.username,
					"login_time":   at,
					"login_ip":     f.IPv4(),
					"user_agent":   f.UserAgent(),
					"login_status": st,
					"province":     province,
					"city":         city,
					"created_at":   at,
				}); err != nil {
					return 0, err
				}
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}

func loadLoginUsers(ctx context.Context, gc *fixture.GenContext) ([]loginUser, error) {
	query, args, err := gc.Adapter.Builder().
		Select("id", "username").
		From("user_auth").
		OrderBy("id").
		Limit(loginUserLimit).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := gc.Adapter.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	var users []loginUser
	for rows.Next() {
		var u loginUser
		if err := rows.Scan(&u.id, &u.username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
