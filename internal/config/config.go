package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"studyshelf/internal/model"
)

type Config struct {
	App         AppConfig          `toml:"app"`
	Auth        AuthConfig         `toml:"auth"`
	GitHub      GitHubConfig       `toml:"github"`
	Collections []model.Collection `toml:"collections"`
	Cache       CacheConfig        `toml:"cache"`
	LLM         LLMConfig          `toml:"llm"`
	MySQL       MySQLConfig        `toml:"mysql"`
	Redis       RedisConfig        `toml:"redis"`
	RabbitMQ    RabbitMQConfig     `toml:"rabbitmq"`
	Storage     StorageConfig      `toml:"storage"`
	RateLimit   RateLimitConfig    `toml:"ratelimit"`
}

type AppConfig struct {
	Name        string   `toml:"name"`
	Env         string   `toml:"env"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	GinMode     string   `toml:"gin_mode"`
	CORSOrigins []string `toml:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

type GitHubConfig struct {
	Token             string  `toml:"token"`
	BaseURL           string  `toml:"base_url"`
	RawBaseURL        string  `toml:"raw_base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

type CacheConfig struct {
	Backend             string `toml:"backend"`
	KeyPrefix           string `toml:"key_prefix"`
	DirectoryTTLSeconds int    `toml:"directory_ttl_seconds"`
	TreeTTLSeconds      int    `toml:"tree_ttl_seconds"`
	ContentEntries      int    `toml:"content_entries"`
	ContentTTLSeconds   int    `toml:"content_ttl_seconds"`
}

type LLMConfig struct {
	Provider        string `toml:"provider"`
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	Model           string `toml:"model"`
	Multimodal      bool   `toml:"multimodal"`
	MaxContentChars int    `toml:"max_content_chars"`
	MaxFetchBytes   int64  `toml:"max_fetch_bytes"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type RabbitMQConfig struct {
	URL                  string `toml:"url"`
	ExchangePersistQueue string `toml:"exchange_persist_queue"`
}

type StorageConfig struct {
	Backend         string `toml:"backend"`
	Bucket          string `toml:"bucket"`
	PublicBaseURL   string `toml:"public_base_url"`
	CredentialsFile string `toml:"credentials_file"`
	S3Region        string `toml:"s3_region"`
	S3Endpoint      string `toml:"s3_endpoint"`
	S3AccessKey     string `toml:"s3_access_key"`
	S3SecretKey     string `toml:"s3_secret_key"`
	S3UsePathStyle  bool   `toml:"s3_use_path_style"`
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	// Defaults are applied after decoding: toml merges array tables into
	// existing slice elements instead of replacing them.
	if len(cfg.Collections) == 0 {
		cfg.Collections = DefaultCollections()
	}
	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if len(c.Collections) == 0 {
		return fmt.Errorf("no collections configured")
	}
	seen := make(map[string]bool, len(c.Collections))
	for i := range c.Collections {
		col := &c.Collections[i]
		col.ID = strings.TrimSpace(col.ID)
		if col.ID == "" || col.Owner == "" || col.Repo == "" {
			return fmt.Errorf("collection #%d: id, owner and repo are required", i)
		}
		if seen[col.ID] {
			return fmt.Errorf("collection %q configured twice", col.ID)
		}
		seen[col.ID] = true
		if col.Branch == "" {
			col.Branch = "main"
		}
		if col.Name == "" {
			col.Name = col.Repo
		}
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func (c *Config) DirectoryTTL() time.Duration {
	return time.Duration(c.Cache.DirectoryTTLSeconds) * time.Second
}

func (c *Config) TreeTTL() time.Duration {
	return time.Duration(c.Cache.TreeTTLSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// DefaultCollections is the catalogue served when no [[collections]] are configured.
func DefaultCollections() []model.Collection {
	return []model.Collection{
		{ID: "1", Name: "1st Year", Owner: "pranabgoyal", Repo: "1st-year-resources-2022-scheme-rvce", Branch: "main"},
		{ID: "2", Name: "2nd Year", Owner: "pranabgoyal", Repo: "2nd-year-resources-2022-scheme-rvce", Branch: "main"},
		{ID: "3", Name: "3rd Year", Owner: "pranabgoyal", Repo: "3rd-year-resources-2022-scheme-rvce", Branch: "main"},
		{ID: "4", Name: "4th Year", Owner: "pranabgoyal", Repo: "4th_year_resources_2022_scheme_RVCE", Branch: "main"},
	}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "studyshelf",
			Env:         "dev",
			Host:        "0.0.0.0",
			Port:        5000,
			GinMode:     "debug",
			CORSOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 120,
		},
		GitHub: GitHubConfig{
			BaseURL:           "https://api.github.com/",
			RawBaseURL:        "https://raw.githubusercontent.com",
			RequestsPerSecond: 5,
			TimeoutSeconds:    30,
		},
		Cache: CacheConfig{
			Backend:             "memory",
			KeyPrefix:           "studyshelf:",
			DirectoryTTLSeconds: 300,
			TreeTTLSeconds:      3600,
			ContentEntries:      0,
			ContentTTLSeconds:   600,
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			BaseURL:         "https://generativelanguage.googleapis.com",
			Model:           "gemini-1.5-flash",
			Multimodal:      false,
			MaxContentChars: 20000,
			MaxFetchBytes:   20 << 20,
			TimeoutSeconds:  90,
		},
		MySQL: MySQLConfig{
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "",
			DB:       "studyshelf",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		RabbitMQ: RabbitMQConfig{
			URL:                  "",
			ExchangePersistQueue: "tutor.exchange.persist",
		},
		Storage: StorageConfig{
			Backend:  "gcs",
			Bucket:   "resources",
			S3Region: "us-east-1",
		},
		RateLimit: RateLimitConfig{
			Requests:      100,
			WindowSeconds: 15 * 60,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", getEnvAsInt("PORT", cfg.App.Port))
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.App.CORSOrigins = splitList(origins)
	}
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)
	cfg.GitHub.BaseURL = getEnv("GITHUB_BASE_URL", cfg.GitHub.BaseURL)

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.ContentEntries = getEnvAsInt("CACHE_CONTENT_ENTRIES", cfg.Cache.ContentEntries)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", getEnv("GEMINI_API_KEY", cfg.LLM.APIKey))
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.Multimodal = getEnvAsBool("LLM_MULTIMODAL", cfg.LLM.Multimodal)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ExchangePersistQueue = getEnv("RABBITMQ_EXCHANGE_PERSIST_QUEUE", cfg.RabbitMQ.ExchangePersistQueue)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_BASE_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", cfg.Storage.CredentialsFile)
	cfg.Storage.S3Region = getEnv("S3_REGION", cfg.Storage.S3Region)
	cfg.Storage.S3Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.S3Endpoint)
	cfg.Storage.S3AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.S3AccessKey)
	cfg.Storage.S3SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.S3SecretKey)

	cfg.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", cfg.RateLimit.Requests)
	cfg.RateLimit.WindowSeconds = getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", cfg.RateLimit.WindowSeconds)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
