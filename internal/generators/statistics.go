package generators

import (
	"context"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
)

const (
	apiStatisticsDays  = 30
	userStatisticsDays = 365
)

var apiEndpoints = []string{
	"/api/users/login", "/api/users/register", "/api/articles/list", "/api/articles/detail",
	"/api/resources/list", "/api/resources/detail", "/api/chat/messages", "/api/code/execute",
	"/api/users/profile", "/api/articles/create", "/api/resources/upload",
}

var apiMethods = []string{"GET", "POST", "PUT", "DELETE"}

var popularEndpoints = []string{
	"/api/users/login", "/api/articles/list", "/api/resources/list",
	"/api/chat/messages", "/api/code/execute",
}

type cumulativeStat struct {
	key      string
	desc     string
	category string
}

var cumulativeStats = []cumulativeStat{
	{"total_users", "Registered users", "user"},
	{"total_articles", "Published articles", "content"},
	{"total_resources", "Active resources", "content"},
	{"total_code_snippets", "Code blocks in articles", "content"},
	{"total_chat_messages", "Visible chat messages", "content"},
	{"total_api_calls", "API calls recorded", "system"},
	{"total_comments", "Visible comments", "content"},
	{"total_logins", "Successful logins", "user"},
	{"total_registrations", "Registrations", "user"},
	{"active_users_today", "Users with a successful login in the last 24h", "user"},
}

// Statistics writes the dashboard tables and keeps the cumulative totals in
// step with the rest of the fixture data.
type Statistics struct{}

func (*Statistics) Name() string { return "statistics" }

func (*Statistics) DependsOn() []string {
	return []string{"users", "categories", "articles", "resources", "comments", "chat", "likes", "login_history"}
}

func (*Statistics) Tables() []string {
	return []string{"daily_metrics", "api_statistics", "user_statistics", "cumulative_statistics"}
}

func (*Statistics) Estimate(cfg *config.Config) int {
	days := cfg.Counts.StatisticsDays
	return days +
		min(days, apiStatisticsDays)*len(apiEndpoints)*len(apiMethods) +
		min(days, userStatisticsDays) +
		len(cumulativeStats)
}

func (*Statistics) Rollups() []fixture.Rollup { return nil }

func (g *Statistics) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	days := gc.Config.Counts.StatisticsDays
	now := gc.Now()
	today := now.Truncate(day)

	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		for i := days - 1; i >= 0; i-- {
			date := today.AddDate(0, 0, -i)
			if _, err := c.Stage(ctx, "daily_metrics", fixture.Row{
				"stat_date":             date,
				"active_users":          gc.Between(100, 10000),
				"avg_response_time":     g.uniform(gc, 50, 500),
				"success_rate":          g.uniform(gc, 90, 99.99),
				"peak_concurrent":       gc.Between(10, 1000),
				"most_popular_endpoint": popularEndpoints[gc.Rand.Intn(len(popularEndpoints))],
				"new_users":             gc.Between(10, 500),
				"total_requests":        gc.Between(1000, 50000),
				"created_at":            date,
				"updated_at":            date,
			}); err != nil {
				return 0, err
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}

		for i := 0; i < min(days, apiStatisticsDays); i++ {
			date := today.AddDate(0, 0, -i)
			for _, endpoint := range apiEndpoints {
				for _, method := range apiMethods {
					success, failed := gc.Between(100, 10000), gc.Between(0, 1000)
					if _, err := c.Stage(ctx, "api_statistics", fixture.Row{
						"stat_date":      date,
						"endpoint":       endpoint,
						"method":         method,
						"success_count":  success,
						"error_count":    failed,
						"total_count":    success + failed,
						"avg_latency_ms": g.uniform(gc, 50, 1000),
						"created_at":     now,
						"updated_at":     now,
					}); err != nil {
						return 0, err
					}
				}
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}

		for i := 0; i < min(days, userStatisticsDays); i++ {
			if _, err := c.Stage(ctx, "user_statistics", fixture.Row{
				"stat_date":      today.AddDate(0, 0, -i),
				"login_count":    gc.Between(100, 5000),
				"register_count": gc.Between(10, 500),
				"created_at":     now,
				"updated_at":     now,
			}); err != nil {
				return 0, err
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}

		// Keys are created once; their values come from ScalarRollups.
		for _, s := range cumulativeStats {
			var id int64
			exists, err := c.Lookup(ctx, "cumulative_statistics",
				c.Builder().Select("id").From("cumulative_statistics").Where(squirrel.Eq{"stat_key": s.key}), &id)
			if err != nil {
				return 0, err
			}
			if exists {
				continue
			}
			if _, err := c.Stage(ctx, "cumulative_statistics", fixture.Row{
				"stat_key":   s.key,
				"stat_value": 0,
				"stat_desc":  s.desc,
				"category":   s.category,
				"updated_at": now,
			}); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}

// uniform draws from [lo, hi] rounded to two decimals.
func (*Statistics) uniform(gc *fixture.GenContext, lo, hi float64) float64 {
	return math.Round((lo+gc.Rand.Float64()*(hi-lo))*100) / 100
}

func (*Statistics) ScalarRollups(qb squirrel.StatementBuilderType, now time.Time) []fixture.ScalarRollup {
	count := func(table string, where squirrel.Sqlizer) squirrel.SelectBuilder {
		sel := qb.Select("COUNT(*)").From(table)
		if where != nil {
			sel = sel.Where(where)
		}
		return sel
	}
	active := squirrel.Eq{"status": fixture.StatusActive}

	sources := map[string]squirrel.Sqlizer{
		"total_users":         count("user_auth", nil),
		"total_articles":      count("articles", active),
		"total_resources":     count("resources", active),
		"total_code_snippets": count("article_code_blocks", nil),
		"total_chat_messages": count("chat_messages", active),
		"total_api_calls":     qb.Select("COALESCE(SUM(total_count), 0)").From("api_statistics"),
		"total_comments": qb.Select().Column(squirrel.Expr(
			"(SELECT COUNT(*) FROM article_comments WHERE status = ?) + (SELECT COUNT(*) FROM resource_comments WHERE status = ?)",
			fixture.StatusActive, fixture.StatusActive)),
		"total_logins":        count("user_login_history", squirrel.Eq{"login_status": 1}),
		"total_registrations": count("user_auth", nil),
		"active_users_today": qb.Select("COUNT(DISTINCT user_id)").
			From("user_login_history").
			Where(squirrel.Eq{"login_status": 1}).
			Where(squirrel.GtOrEq{"login_time": now.Add(-day)}),
	}

	out := make([]fixture.ScalarRollup, 0, len(cumulativeStats))
	for _, s := range cumulativeStats {
		out = append(out, fixture.ScalarRollup{
			Table:    "cumulative_statistics",
			KeyCol:   "stat_key",
			Key:      s.key,
			ValueCol: "stat_value",
			Source:   sources[s.key],
		})
	}
	return out
}
