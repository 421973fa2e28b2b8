package generators

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
)

// chatAuthorLimit caps how many users are loaded as chat authors.
const chatAuthorLimit = 10000

type chatAuthor struct {
	id       int64
	username string
	nickname string
	avatar   any
}

// Chat writes chat room messages with the author's display fields copied in.
type Chat struct{}

func (*Chat) Name() string        { return "chat" }
func (*Chat) DependsOn() []string { return []string{"users"} }
func (*Chat) Tables() []string    { return []string{"chat_messages"} }

func (*Chat) Estimate(cfg *config.Config) int { return cfg.Counts.ChatMessages }

func (*Chat) Rollups() []fixture.Rollup { return nil }

func (g *Chat) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	cfg := gc.Config
	msgType, err := fixture.NewWeightedSampler([]int{1, 2}, cfg.Weights.ChatMessageType)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("chat_message_type: %w", err)
	}
	status, err := fixture.NewWeightedSampler([]int{0, 1}, cfg.Weights.ChatStatus)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("chat_status: %w", err)
	}

	authors, err := loadChatAuthors(ctx, gc)
	if err != nil {
		return fixture.Stats{}, err
	}
	if len(authors) == 0 {
		return fixture.Stats{}, &fixture.EmptyParentPoolError{Table: "user_auth"}
	}

	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		for i := 0; i < cfg.Counts.ChatMessages; i++ {
			a := authors[gc.Rand.Intn(len(authors))]
			sent := gc.Since(365 * day)
			if _, err := c.Stage(ctx, "chat_messages", fixture.Row{
				"user_id":      a.id,
				"username":     a.username,
				"nickname":     a.nickname,
				"avatar":       a.avatar,
				"content":      gc.Faker.Sentence(20),
				"message_type": msgType.Sample(gc.Rand),
				"send_time":    sent,
				"ip_address":   gc.Faker.IPv4(),
				"status":       status.Sample(gc.Rand),
				"created_at":   sent,
			}); err != nil {
				return 0, err
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}

// loadChatAuthors reads users with their profile labels. A missing or blank
// nickname falls back to the username; a missing avatar stays NULL.
func loadChatAuthors(ctx context.Context, gc *fixture.GenContext) ([]chatAuthor, error) {
	query, args, err := gc.Adapter.Builder().
		Select("u.id", "u.username", "p.nickname", "p.avatar_url").
		From("user_auth u").
		LeftJoin("user_profile p ON p.user_id = u.id").
		OrderBy("u.id").
		Limit(chatAuthorLimit).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := gc.Adapter.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat authors: %w", err)
	}
	defer rows.Close()

	var authors []chatAuthor
	for rows.Next() {
		var a chatAuthor
		var nickname, avatar sql.NullString
		if err := rows.Scan(&a.id, &a.username, &nickname, &avatar); err != nil {
			return nil, fmt.Errorf("failed to scan chat author: %w", err)
		}
		a.nickname = a.username
		if nickname.Valid && nickname.String != "" {
			a.nickname = nickname.String
		}
		if avatar.Valid && avatar.String != "" {
			a.avatar = avatar.String
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}
