package config

import (
	"fmt"
	"strings"

	"github.com/qr-pickup/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Upload   UploadConfig   `mapstructure:"upload"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Location LocationConfig `mapstructure:"location"`
	List     ListConfig     `mapstructure:"list"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled                bool           `mapstructure:"enabled"`
	Host                   string         `mapstructure:"host"`
	Port                   int            `mapstructure:"port"`
	Password               string         `mapstructure:"password"`
	DB                     int            `mapstructure:"db"`
	Concurrency            int            `mapstructure:"concurrency"`
	Queues                 map[string]int `mapstructure:"queues"`
	GeocodeRetryDelaySec   int            `mapstructure:"geocode_retry_delay_seconds"`
	BackfillIntervalMinute int            `mapstructure:"backfill_interval_minutes"` // 0 关闭周期补全
}

// UploadConfig 照片上传配置
type UploadConfig struct {
	Dir          string   `mapstructure:"dir"`
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// GeocodeConfig 逆地理编码配置
type GeocodeConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
	TimeoutMS      int    `mapstructure:"timeout_ms"`
	CacheTTLHours  int    `mapstructure:"cache_ttl_hours"`
	DelayMS        int    `mapstructure:"delay_ms"` // 补全任务逐条调用间隔
}

// LocationConfig 定位采集配置
type LocationConfig struct {
	TargetAccuracyM float64 `mapstructure:"target_accuracy_m"`
	MaxWaitMS       int     `mapstructure:"max_wait_ms"`
	BadAccuracyM    float64 `mapstructure:"bad_accuracy_m"` // 管理端低精度徽标阈值，与采集阈值独立
}

// ListConfig 管理端列表配置
type ListConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	SubmitRateLimit SubmitRateLimitConfig `mapstructure:"submit_rate_limit"`
}

// SubmitRateLimitConfig 回收提交限流配置
type SubmitRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/pickup.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "qp")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	viper.SetDefault("queue.geocode_retry_delay_seconds", 60)
	viper.SetDefault("queue.backfill_interval_minutes", 0)
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("upload.max_size", 3145728)
	viper.SetDefault("upload.allowed_types", []string{
		"image/jpeg",
		"image/png",
		"image/webp",
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
	})
	viper.SetDefault("cors.allow_credentials", false)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("geocode.user_agent", "qr-pickup/1.0")
	viper.SetDefault("geocode.accept_language", "ko")
	viper.SetDefault("geocode.timeout_ms", 5000)
	viper.SetDefault("geocode.cache_ttl_hours", 24)
	viper.SetDefault("geocode.delay_ms", 250)
	viper.SetDefault("location.target_accuracy_m", 30)
	viper.SetDefault("location.max_wait_ms", 15000)
	viper.SetDefault("location.bad_accuracy_m", 100)
	viper.SetDefault("list.default_limit", 300)
	viper.SetDefault("list.max_limit", 500)
	viper.SetDefault("security.submit_rate_limit.window_seconds", 60)
	viper.SetDefault("security.submit_rate_limit.max_requests", 10)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}
