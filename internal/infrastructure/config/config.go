package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Log           LogConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	CatalogSource CatalogSourceConfig
	Shopify       ShopifyConfig
	Export        ExportConfig
	Storage       StorageConfig
	Scheduler     SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// RedisConfig holds Redis connection settings for the run lock
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CatalogSourceConfig holds the source commerce system connection settings
type CatalogSourceConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	// CategoryID scopes the snapshot to a category subtree; zero exports
	// the whole catalog
	CategoryID      int64
	IncludeChildren bool
	PageSize        int
	TimeoutSeconds  int
}

// ShopifyConfig holds the destination platform credentials
type ShopifyConfig struct {
	ShopDomain           string
	AccessToken          string
	APIVersion           string
	TimeoutSeconds       int
	UploadTimeoutSeconds int
}

// ExportConfig holds feed generation settings
type ExportConfig struct {
	// Dir is the local directory feed files and run logs are written to
	Dir string
	// Brand is the shop name used as vendor/brand on every record
	Brand string
	// CurrencyCode prefixes advertising feed prices
	CurrencyCode string
	// GoogleProductCategory is the fixed advertising feed category
	GoogleProductCategory string
	// AdFeedDelimiter is the tabular delimiter of the advertising feed
	AdFeedDelimiter string
	// Tracking parameters appended to advertising feed links
	TrackingSource   string
	TrackingCampaign string
	TrackingMedium   string
	// CategoryMappingFile is the path of the versioned mapping table
	CategoryMappingFile string
	// Delivery metadata
	DefaultDeliveryTime string
	PreorderTerm        string
	PreorderLabel       string
}

// StorageConfig holds object storage settings for publishing the ad feed
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	// PublicBaseURL is the externally reachable base of published objects;
	// empty derives the URL from the endpoint and bucket
	PublicBaseURL string
}

// SchedulerConfig holds the periodic export trigger settings
type SchedulerConfig struct {
	Enabled bool
	// CheckInterval is how often due targets are evaluated
	CheckInterval time.Duration
	// AdFeedInterval is the pause between advertising feed exports
	AdFeedInterval time.Duration
	// BulkImportInterval is the pause between bulk import runs
	BulkImportInterval time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with FEED_ prefix (e.g. FEED_SHOPIFY_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		CatalogSource: CatalogSourceConfig{
			BaseURL:         v.GetString("catalog_source.base_url"),
			ConsumerKey:     v.GetString("catalog_source.consumer_key"),
			ConsumerSecret:  v.GetString("catalog_source.consumer_secret"),
			CategoryID:      v.GetInt64("catalog_source.category_id"),
			IncludeChildren: v.GetBool("catalog_source.include_children"),
			PageSize:        v.GetInt("catalog_source.page_size"),
			TimeoutSeconds:  v.GetInt("catalog_source.timeout_seconds"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:           v.GetString("shopify.shop_domain"),
			AccessToken:          v.GetString("shopify.access_token"),
			APIVersion:           v.GetString("shopify.api_version"),
			TimeoutSeconds:       v.GetInt("shopify.timeout_seconds"),
			UploadTimeoutSeconds: v.GetInt("shopify.upload_timeout_seconds"),
		},
		Export: ExportConfig{
			Dir:                   v.GetString("export.dir"),
			Brand:                 v.GetString("export.brand"),
			CurrencyCode:          v.GetString("export.currency_code"),
			GoogleProductCategory: v.GetString("export.google_product_category"),
			AdFeedDelimiter:       v.GetString("export.ad_feed_delimiter"),
			TrackingSource:        v.GetString("export.tracking_source"),
			TrackingCampaign:      v.GetString("export.tracking_campaign"),
			TrackingMedium:        v.GetString("export.tracking_medium"),
			CategoryMappingFile:   v.GetString("export.category_mapping_file"),
			DefaultDeliveryTime:   v.GetString("export.default_delivery_time"),
			PreorderTerm:          v.GetString("export.preorder_term"),
			PreorderLabel:         v.GetString("export.preorder_label"),
		},
		Storage: StorageConfig{
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
		},
		Scheduler: SchedulerConfig{
			Enabled:            v.GetBool("scheduler.enabled"),
			CheckInterval:      v.GetDuration("scheduler.check_interval"),
			AdFeedInterval:     v.GetDuration("scheduler.ad_feed_interval"),
			BulkImportInterval: v.GetDuration("scheduler.bulk_import_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "feedbridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "feedbridge"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.CatalogSource.PageSize == 0 {
		cfg.CatalogSource.PageSize = 100
	}
	if cfg.CatalogSource.TimeoutSeconds == 0 {
		cfg.CatalogSource.TimeoutSeconds = 30
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Shopify.UploadTimeoutSeconds == 0 {
		cfg.Shopify.UploadTimeoutSeconds = 120
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "./exports"
	}
	if cfg.Export.CurrencyCode == "" {
		cfg.Export.CurrencyCode = "EUR"
	}
	if cfg.Export.AdFeedDelimiter == "" {
		cfg.Export.AdFeedDelimiter = ";"
	}
	if cfg.Export.GoogleProductCategory == "" {
		cfg.Export.GoogleProductCategory = "Apparel & Accessories > Clothing"
	}
	if cfg.Export.CategoryMappingFile == "" {
		cfg.Export.CategoryMappingFile = "./configs/category_mapping.toml"
	}
	if cfg.Export.DefaultDeliveryTime == "" {
		cfg.Export.DefaultDeliveryTime = "3 - 5 Werktage"
	}
	if cfg.Export.PreorderTerm == "" {
		cfg.Export.PreorderTerm = "Vorbestellung / Preorder"
	}
	if cfg.Export.PreorderLabel == "" {
		cfg.Export.PreorderLabel = "Vorbestellung"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Scheduler.CheckInterval == 0 {
		cfg.Scheduler.CheckInterval = time.Minute
	}
	if cfg.Scheduler.AdFeedInterval == 0 {
		cfg.Scheduler.AdFeedInterval = time.Hour
	}
	if cfg.Scheduler.BulkImportInterval == 0 {
		cfg.Scheduler.BulkImportInterval = 24 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if len(c.Export.AdFeedDelimiter) != 1 {
		return fmt.Errorf("export.ad_feed_delimiter must be a single character")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Shopify.ShopDomain == "" || c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.shop_domain and shopify.access_token are required in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
