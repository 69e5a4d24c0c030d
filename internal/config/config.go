package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	S3         S3Config
	CORS       CORSConfig
	Queue      QueueConfig
	Normalizer NormalizerConfig
	ADP        ADPConnectorConfig
	Email      EmailConfig
}

// EmailConfig holds job completion notification settings.
type EmailConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	NotifyAddress string `mapstructure:"notify_address"`
}

// Queue backends.
const (
	QueueBackendPostgres = "postgres"
	QueueBackendAsynq    = "asynq"
)

// QueueConfig holds job dispatch settings.
type QueueConfig struct {
	Backend          string `mapstructure:"backend"`
	PollIntervalSecs int    `mapstructure:"poll_interval_secs"`
	MaxRetries       int    `mapstructure:"max_retries"`
	Concurrency      int    `mapstructure:"concurrency"`
	RedisURL         string `mapstructure:"redis_url"`
	QueueName        string `mapstructure:"queue_name"`
}

// NormalizerConfig holds the defaults applied to jobs that do not override them.
type NormalizerConfig struct {
	SelectionMode string `mapstructure:"selection_mode"`
	RetentionMode string `mapstructure:"retention_mode"`
	FieldSuffix   string `mapstructure:"field_suffix"`
	DocClassVar   string `mapstructure:"doc_class_var"`
	UseAllPages   bool   `mapstructure:"use_all_pages"`
	QualityAdjust bool   `mapstructure:"quality_adjust"`
	Consolidate   bool   `mapstructure:"consolidate"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
	// MaxLifetimeMins recycles pooled connections; 0 keeps them forever.
	MaxLifetimeMins int `mapstructure:"max_lifetime_mins"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Load reads configuration from environment variables with the ADPNORM_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ADPNORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "adpnorm")
	v.SetDefault("db.password", "adpnorm_secret")
	v.SetDefault("db.name", "adpnorm_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.max_lifetime_mins", 30)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "1h")
	v.SetDefault("jwt.issuer", "adpnorm")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "adpnorm-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.backend", QueueBackendPostgres)
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 3)
	v.SetDefault("queue.redis_url", "redis://localhost:6379/0")
	v.SetDefault("queue.queue_name", "normalize")

	// Normalizer defaults
	v.SetDefault("normalizer.selection_mode", "keepall")
	v.SetDefault("normalizer.retention_mode", "keepall")
	v.SetDefault("normalizer.field_suffix", "_ADP")
	v.SetDefault("normalizer.doc_class_var", "ADPDocType")
	v.SetDefault("normalizer.use_all_pages", true)
	v.SetDefault("normalizer.quality_adjust", false)
	v.SetDefault("normalizer.consolidate", false)

	// ADP connector defaults
	v.SetDefault("adp.login_target", "/v1/preauth/validateAuth")
	v.SetDefault("adp.verify_token_target", "/usermgmt/v1/user/currentUserInfo")
	v.SetDefault("adp.analyze_target", "/adp/aca/v1/projects/[[adp_project_id]]/analyzers")
	v.SetDefault("adp.timeout_in_minutes", 5)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@adpnorm.local")
	v.SetDefault("email.from_name", "ADP Normalizer")
	v.SetDefault("email.notify_address", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "ADPNORM_SERVER_PORT",
		"server.read_timeout":       "ADPNORM_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "ADPNORM_SERVER_WRITE_TIMEOUT",
		"server.environment":        "ADPNORM_SERVER_ENVIRONMENT",
		"db.host":                   "ADPNORM_DB_HOST",
		"db.port":                   "ADPNORM_DB_PORT",
		"db.user":                   "ADPNORM_DB_USER",
		"db.password":               "ADPNORM_DB_PASSWORD",
		"db.name":                   "ADPNORM_DB_NAME",
		"db.sslmode":                "ADPNORM_DB_SSLMODE",
		"db.max_open":               "ADPNORM_DB_MAX_OPEN",
		"db.max_idle":               "ADPNORM_DB_MAX_IDLE",
		"db.max_lifetime_mins":      "ADPNORM_DB_MAX_LIFETIME_MINS",
		"jwt.secret":                "ADPNORM_JWT_SECRET",
		"jwt.access_expiry":         "ADPNORM_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                "ADPNORM_JWT_ISSUER",
		"s3.region":                 "ADPNORM_S3_REGION",
		"s3.bucket":                 "ADPNORM_S3_BUCKET",
		"s3.endpoint":               "ADPNORM_S3_ENDPOINT",
		"s3.access_key":             "ADPNORM_S3_ACCESS_KEY",
		"s3.secret_key":             "ADPNORM_S3_SECRET_KEY",
		"s3.max_file_size_mb":       "ADPNORM_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":         "ADPNORM_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":      "ADPNORM_CORS_ALLOWED_ORIGINS",
		"queue.backend":             "ADPNORM_QUEUE_BACKEND",
		"queue.poll_interval_secs":  "ADPNORM_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":         "ADPNORM_QUEUE_MAX_RETRIES",
		"queue.concurrency":         "ADPNORM_QUEUE_CONCURRENCY",
		"queue.redis_url":           "ADPNORM_QUEUE_REDIS_URL",
		"queue.queue_name":          "ADPNORM_QUEUE_QUEUE_NAME",
		"normalizer.selection_mode": "ADPNORM_NORMALIZER_SELECTION_MODE",
		"normalizer.retention_mode": "ADPNORM_NORMALIZER_RETENTION_MODE",
		"normalizer.field_suffix":   "ADPNORM_NORMALIZER_FIELD_SUFFIX",
		"normalizer.doc_class_var":  "ADPNORM_NORMALIZER_DOC_CLASS_VAR",
		"normalizer.use_all_pages":  "ADPNORM_NORMALIZER_USE_ALL_PAGES",
		"normalizer.quality_adjust": "ADPNORM_NORMALIZER_QUALITY_ADJUST",
		"normalizer.consolidate":    "ADPNORM_NORMALIZER_CONSOLIDATE",
		"adp.zen_base_url":          "ADPNORM_ADP_ZEN_BASE_URL",
		"adp.ums_base_url":          "ADPNORM_ADP_UMS_BASE_URL",
		"adp.aca_base_url":          "ADPNORM_ADP_ACA_BASE_URL",
		"adp.login_target":          "ADPNORM_ADP_LOGIN_TARGET",
		"adp.verify_token_target":   "ADPNORM_ADP_VERIFY_TOKEN_TARGET",
		"adp.analyze_target":        "ADPNORM_ADP_ANALYZE_TARGET",
		"adp.adp_project_id":        "ADPNORM_ADP_PROJECT_ID",
		"adp.client_id":             "ADPNORM_ADP_CLIENT_ID",
		"adp.client_secret":         "ADPNORM_ADP_CLIENT_SECRET",
		"adp.timeout_in_minutes":    "ADPNORM_ADP_TIMEOUT_IN_MINUTES",
		"email.provider":            "ADPNORM_EMAIL_PROVIDER",
		"email.region":              "ADPNORM_EMAIL_REGION",
		"email.from_address":        "ADPNORM_EMAIL_FROM_ADDRESS",
		"email.from_name":           "ADPNORM_EMAIL_FROM_NAME",
		"email.notify_address":      "ADPNORM_EMAIL_NOTIFY_ADDRESS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms like Railway set PORT. Use it unless ADPNORM_SERVER_PORT is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ADPNORM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		MaxLifetimeMins: v.GetInt("db.max_lifetime_mins"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("queue.backend")))
	if backend != QueueBackendAsynq {
		backend = QueueBackendPostgres
	}
	cfg.Queue = QueueConfig{
		Backend:          backend,
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
		RedisURL:         v.GetString("queue.redis_url"),
		QueueName:        v.GetString("queue.queue_name"),
	}

	cfg.Normalizer = NormalizerConfig{
		SelectionMode: v.GetString("normalizer.selection_mode"),
		RetentionMode: v.GetString("normalizer.retention_mode"),
		FieldSuffix:   v.GetString("normalizer.field_suffix"),
		DocClassVar:   v.GetString("normalizer.doc_class_var"),
		UseAllPages:   v.GetBool("normalizer.use_all_pages"),
		QualityAdjust: v.GetBool("normalizer.quality_adjust"),
		Consolidate:   v.GetBool("normalizer.consolidate"),
	}

	cfg.ADP = ADPConnectorConfig{
		ZenBaseURL:        v.GetString("adp.zen_base_url"),
		UMSBaseURL:        v.GetString("adp.ums_base_url"),
		ACABaseURL:        v.GetString("adp.aca_base_url"),
		LoginTarget:       v.GetString("adp.login_target"),
		VerifyTokenTarget: v.GetString("adp.verify_token_target"),
		RawAnalyzeTarget:  v.GetString("adp.analyze_target"),
		ProjectID:         v.GetString("adp.adp_project_id"),
		ClientID:          v.GetString("adp.client_id"),
		ClientSecret:      v.GetString("adp.client_secret"),
		TimeoutInMinutes:  v.GetInt("adp.timeout_in_minutes"),
	}

	cfg.Email = EmailConfig{
		Provider:      v.GetString("email.provider"),
		Region:        v.GetString("email.region"),
		FromAddress:   v.GetString("email.from_address"),
		FromName:      v.GetString("email.from_name"),
		NotifyAddress: v.GetString("email.notify_address"),
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
