// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Chat          ChatConfig          `mapstructure:"chat"`
	CORS          CORSConfig          `mapstructure:"cors"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// 存储后端，启动时确定，运行期不会切换。
const (
	BackendJSON   = "json"
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
)

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	Backend string       `mapstructure:"backend"`
	MySQL   MySQLConfig  `mapstructure:"mysql"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
	JSON    JSONConfig   `mapstructure:"json"`
	Redis   RedisConfig  `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SQLiteConfig 存储内嵌 SQLite 数据库的配置。
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// JSONConfig 存储 JSON 文件存储的配置。
type JSONConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// 会话存储与聊天数据端点的可选值。
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	EndpointLocal = "local"
	EndpointHTTP  = "http"
)

// ChatConfig 存储聊天助手相关的配置。
type ChatConfig struct {
	SessionBackend      string `mapstructure:"session_backend"`
	SessionTTLHours     int    `mapstructure:"session_ttl_hours"`
	SweepSchedule       string `mapstructure:"sweep_schedule"`
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds"`
	Endpoint            string `mapstructure:"endpoint"`
	EndpointBaseURL     string `mapstructure:"endpoint_base_url"`
}

// SessionTTL 返回会话的空闲过期时间。
func (c ChatConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// FetchTimeout 返回聊天助手调用数据端点的超时时间。
func (c ChatConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// CORSConfig 存储跨域相关的配置。
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig 存储按客户端限流的配置。
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	URLExpireMin    int    `mapstructure:"url_expire_minutes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.backend", BackendJSON)
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.sqlite.path", "data/campus.db")
	v.SetDefault("database.json.path", "data/db.json")
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")

	v.SetDefault("chat.session_backend", SessionBackendMemory)
	v.SetDefault("chat.session_ttl_hours", 24)
	v.SetDefault("chat.sweep_schedule", "@hourly")
	v.SetDefault("chat.fetch_timeout_seconds", 10)
	v.SetDefault("chat.endpoint", EndpointLocal)
	v.SetDefault("chat.endpoint_base_url", "http://localhost:8080/api/v1")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_minute", 100)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "campus-record-changes")
	v.SetDefault("kafka.group_id", "campus-info-go-consumer")

	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("elasticsearch.addresses", "http://localhost:9200")
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.index_name", "campus_faqs")

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket_name", "campus-attachments")
	v.SetDefault("minio.url_expire_minutes", 60)
}

// Load 从指定路径读取 YAML 配置，环境变量 CAMPUS_* 覆盖文件中的值。
// configPath 为空时只使用默认值和环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CAMPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Backend {
	case BackendJSON, BackendMySQL, BackendSQLite:
	default:
		return fmt.Errorf("未知的存储后端: %q", c.Database.Backend)
	}
	switch c.Chat.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("未知的会话存储: %q", c.Chat.SessionBackend)
	}
	switch c.Chat.Endpoint {
	case EndpointLocal, EndpointHTTP:
	default:
		return fmt.Errorf("未知的数据端点类型: %q", c.Chat.Endpoint)
	}
	if c.Database.Backend == BackendMySQL && c.Database.MySQL.DSN == "" {
		return fmt.Errorf("mysql 后端需要配置 database.mysql.dsn")
	}
	if c.Chat.SessionTTLHours <= 0 {
		return fmt.Errorf("chat.session_ttl_hours 必须大于 0")
	}
	return nil
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = *cfg
}
