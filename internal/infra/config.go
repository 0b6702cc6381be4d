package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации консоли.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	ChangeFeed ChangeFeedConfig `mapstructure:"changefeed"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Email      EmailConfig      `mapstructure:"email"`
	Reports    ReportsConfig    `mapstructure:"reports"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"` // Для WebSocket
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // Пусто: метрики не публикуются
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (Pub/Sub).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig содержит пути к RSA ключам и настройки JWT.
type AuthConfig struct {
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	PublicKey      []byte
	PrivateKey     []byte
}

// ChangeFeedConfig выбирает транспорт уведомлений об изменениях.
type ChangeFeedConfig struct {
	Driver         string        `mapstructure:"driver"` // redis, postgres, memory
	ChannelPrefix  string        `mapstructure:"channel_prefix"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	SubscribeTries uint          `mapstructure:"subscribe_tries"`
}

type DashboardConfig struct {
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
	Timezone       string        `mapstructure:"timezone"` // Граница "сегодня" и "начала месяца"
}

// Location возвращает часовой пояс дашборда, UTC при ошибке.
func (d DashboardConfig) Location() *time.Location {
	if d.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type EmailConfig struct {
	ResendAPIKey string  `mapstructure:"resend_api_key"`
	From         string  `mapstructure:"from"`
	FromName     string  `mapstructure:"from_name"`
	AdminAddress string  `mapstructure:"admin_address"`
	TestMode     bool    `mapstructure:"test_mode"` // Письма только логируются
	RatePerSec   float64 `mapstructure:"rate_per_sec"`
	OutboxSize   int     `mapstructure:"outbox_size"`
}

// ReportsConfig — архив отчетов в S3-совместимом хранилище.
type ReportsConfig struct {
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
}

func (r ReportsConfig) ArchiveEnabled() bool {
	return r.S3Bucket != ""
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Loader держит экземпляр viper, чтобы можно было следить за изменениями файла.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return &Loader{v: v}
}

// LoadConfig инициализирует конфигурацию, объединяя значения из .env, файла и ENV.
func LoadConfig() (*Config, error) {
	return NewLoader().Load()
}

func (l *Loader) Load() (*Config, error) {
	// .env не обязателен, в Docker/K8s переменные приходят напрямую
	_ = godotenv.Load()

	if err := l.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}

	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")
	cfg.Auth.PrivateKey = loadKeyResource(cfg.Auth.PrivateKeyPath, "AUTH_PRIVATE_KEY_DATA")

	return cfg, nil
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// Watch вызывает onChange при каждом изменении файла конфигурации.
// Используется только для "горячих" настроек (уровень логирования).
func (l *Loader) Watch(onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	// Ключи без значений нужны, чтобы Unmarshal увидел их через AutomaticEnv
	for _, key := range []string{
		"database.url", "redis.password",
		"auth.public_key_path", "auth.private_key_path",
		"email.resend_api_key",
		"reports.s3_bucket", "reports.s3_endpoint", "reports.s3_access_key", "reports.s3_secret_key",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("changefeed.driver", "redis")
	v.SetDefault("changefeed.channel_prefix", RedisNamespace)
	v.SetDefault("changefeed.reconnect_delay", 1*time.Second)
	v.SetDefault("changefeed.subscribe_tries", 3)
	v.SetDefault("dashboard.refresh_timeout", 10*time.Second)
	v.SetDefault("dashboard.timezone", "UTC")
	v.SetDefault("email.from", "onboarding@resend.dev")
	v.SetDefault("email.from_name", "Swasthya Saathi")
	v.SetDefault("email.admin_address", "admin@swasthyasaathi.org")
	v.SetDefault("email.test_mode", false)
	v.SetDefault("email.rate_per_sec", 2)
	v.SetDefault("email.outbox_size", 1000)
	v.SetDefault("reports.s3_region", "us-east-1")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// loadKeyResource берет PEM из ENV (Docker/K8s) или читает файл по пути из конфига
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
