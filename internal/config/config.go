package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBatchSize  = 1000
	DefaultConfigFile = "fixturegen.yaml"
)

type Config struct {
	Database  Database `yaml:"database" mapstructure:"database"`
	BatchSize int      `yaml:"batch_size" mapstructure:"batch_size"`
	Counts    Counts   `yaml:"counts" mapstructure:"counts"`
	Weights   Weights  `yaml:"weights" mapstructure:"weights"`
	Comments  Comments `yaml:"comments" mapstructure:"comments"`
	Likes     Likes    `yaml:"likes" mapstructure:"likes"`
	Log       Log      `yaml:"log" mapstructure:"log"`
}

type Database struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	URLEnv   string `yaml:"url_env" mapstructure:"url_env"`
}

type Counts struct {
	Users                  int `yaml:"users" mapstructure:"users"`
	ArticleCategories      int `yaml:"article_categories" mapstructure:"article_categories"`
	ArticleTags            int `yaml:"article_tags" mapstructure:"article_tags"`
	ResourceCategories     int `yaml:"resource_categories" mapstructure:"resource_categories"`
	Articles               int `yaml:"articles" mapstructure:"articles"`
	Resources              int `yaml:"resources" mapstructure:"resources"`
	Comments               int `yaml:"comments" mapstructure:"comments"`
	ChatMessages           int `yaml:"chat_messages" mapstructure:"chat_messages"`
	LoginHistoryMaxPerUser int `yaml:"login_history_max_per_user" mapstructure:"login_history_max_per_user"`
	StatisticsDays         int `yaml:"statistics_days" mapstructure:"statistics_days"`
}

// Weights are categorical distributions, positionally matched to outcomes.
type Weights struct {
	ArticleStatus   []float64 `yaml:"article_status" mapstructure:"article_status"`
	ResourceStatus  []float64 `yaml:"resource_status" mapstructure:"resource_status"`
	CommentStatus   []float64 `yaml:"comment_status" mapstructure:"comment_status"`
	UserRole        []float64 `yaml:"user_role" mapstructure:"user_role"`
	AccountStatus   []float64 `yaml:"account_status" mapstructure:"account_status"`
	ChatMessageType []float64 `yaml:"chat_message_type" mapstructure:"chat_message_type"`
	ChatStatus      []float64 `yaml:"chat_status" mapstructure:"chat_status"`
	LoginStatus     []float64 `yaml:"login_status" mapstructure:"login_status"`
}

type Comments struct {
	ArticleShare     float64 `yaml:"article_share" mapstructure:"article_share"`
	ReplyProbability float64 `yaml:"reply_probability" mapstructure:"reply_probability"`
	LikeProbability  float64 `yaml:"like_probability" mapstructure:"like_probability"`
	MaxLikes         int     `yaml:"max_likes" mapstructure:"max_likes"`
}

type Likes struct {
	MaxPerArticle  int `yaml:"max_per_article" mapstructure:"max_per_article"`
	MaxPerResource int `yaml:"max_per_resource" mapstructure:"max_per_resource"`
}

type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// Default returns the configuration written by `fixturegen init`.
func Default() *Config {
	return &Config{
		Database:  Database{Provider: "sqlite", URLEnv: "DATABASE_URL"},
		BatchSize: DefaultBatchSize,
		Counts: Counts{
			Users:                  1000,
			ArticleCategories:      20,
			ArticleTags:            60,
			ResourceCategories:     15,
			Articles:               2000,
			Resources:              1000,
			Comments:               5000,
			ChatMessages:           5000,
			LoginHistoryMaxPerUser: 50,
			StatisticsDays:         730,
		},
		Weights: Weights{
			ArticleStatus:   []float64{5, 90, 5},
			ResourceStatus:  []float64{2, 95, 3},
			CommentStatus:   []float64{3, 95, 2},
			UserRole:        []float64{95, 5},
			AccountStatus:   []float64{5, 90, 5},
			ChatMessageType: []float64{95, 5},
			ChatStatus:      []float64{5, 95},
			LoginStatus:     []float64{10, 90},
		},
		Comments: Comments{
			ArticleShare:     0.7,
			ReplyProbability: 0.1,
			LikeProbability:  0.3,
			MaxLikes:         50,
		},
		Likes: Likes{MaxPerArticle: 200, MaxPerResource: 100},
		Log:   Log{Level: "info"},
	}
}

// SetDefaults registers Default() with viper so keys missing from the
// config file and environment fall back to it.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.provider", d.Database.Provider)
	v.SetDefault("database.url_env", d.Database.URLEnv)
	v.SetDefault("batch_size", d.BatchSize)

	v.SetDefault("counts.users", d.Counts.Users)
	v.SetDefault("counts.article_categories", d.Counts.ArticleCategories)
	v.SetDefault("counts.article_tags", d.Counts.ArticleTags)
	v.SetDefault("counts.resource_categories", d.Counts.ResourceCategories)
	v.SetDefault("counts.articles", d.Counts.Articles)
	v.SetDefault("counts.resources", d.Counts.Resources)
	v.SetDefault("counts.comments", d.Counts.Comments)
	v.SetDefault("counts.chat_messages", d.Counts.ChatMessages)
	v.SetDefault("counts.login_history_max_per_user", d.Counts.LoginHistoryMaxPerUser)
	v.SetDefault("counts.statistics_days", d.Counts.StatisticsDays)

	v.SetDefault("weights.article_status", d.Weights.ArticleStatus)
	v.SetDefault("weights.resource_status", d.Weights.ResourceStatus)
	v.SetDefault("weights.comment_status", d.Weights.CommentStatus)
	v.SetDefault("weights.user_role", d.Weights.UserRole)
	v.SetDefault("weights.account_status", d.Weights.AccountStatus)
	v.SetDefault("weights.chat_message_type", d.Weights.ChatMessageType)
	v.SetDefault("weights.chat_status", d.Weights.ChatStatus)
	v.SetDefault("weights.login_status", d.Weights.LoginStatus)

	v.SetDefault("comments.article_share", d.Comments.ArticleShare)
	v.SetDefault("comments.reply_probability", d.Comments.ReplyProbability)
	v.SetDefault("comments.like_probability", d.Comments.LikeProbability)
	v.SetDefault("comments.max_likes", d.Comments.MaxLikes)

	v.SetDefault("likes.max_per_article", d.Likes.MaxPerArticle)
	v.SetDefault("likes.max_per_resource", d.Likes.MaxPerResource)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// Load reads the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}

	var errs []error
	counts := map[string]int{
		"counts.users":                      c.Counts.Users,
		"counts.article_categories":         c.Counts.ArticleCategories,
		"counts.article_tags":               c.Counts.ArticleTags,
		"counts.resource_categories":        c.Counts.ResourceCategories,
		"counts.articles":                   c.Counts.Articles,
		"counts.resources":                  c.Counts.Resources,
		"counts.comments":                   c.Counts.Comments,
		"counts.chat_messages":              c.Counts.ChatMessages,
		"counts.login_history_max_per_user": c.Counts.LoginHistoryMaxPerUser,
		"counts.statistics_days":            c.Counts.StatisticsDays,
		"comments.max_likes":                c.Comments.MaxLikes,
		"likes.max_per_article":             c.Likes.MaxPerArticle,
		"likes.max_per_resource":            c.Likes.MaxPerResource,
	}
	for name, n := range counts {
		if n < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", name, n))
		}
	}

	probabilities := map[string]float64{
		"article_share":     c.Comments.ArticleShare,
		"reply_probability": c.Comments.ReplyProbability,
		"like_probability":  c.Comments.LikeProbability,
	}
	for name, p := range probabilities {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("comments.%s must be within [0,1], got %v", name, p))
		}
	}

	weights := []struct {
		name  string
		w     []float64
		arity int
	}{
		{"article_status", c.Weights.ArticleStatus, 3},
		{"resource_status", c.Weights.ResourceStatus, 3},
		{"comment_status", c.Weights.CommentStatus, 3},
		{"user_role", c.Weights.UserRole, 2},
		{"account_status", c.Weights.AccountStatus, 3},
		{"chat_message_type", c.Weights.ChatMessageType, 2},
		{"chat_status", c.Weights.ChatStatus, 2},
		{"login_status", c.Weights.LoginStatus, 2},
	}
	for _, w := range weights {
		if err := checkWeights(w.name, w.w, w.arity); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func checkWeights(name string, w []float64, arity int) error {
	if len(w) != arity {
		return fmt.Errorf("weights.%s needs %d values, got %d", name, arity, len(w))
	}
	sum := 0.0
	for _, v := range w {
		if v < 0 {
			return fmt.Errorf("weights.%s has negative value %v", name, v)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("weights.%s sums to zero", name)
	}
	return nil
}

// WriteDefault writes Default() as YAML to path, refusing to overwrite.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
