package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

// Sentiment 独立进程（cmd/sentiment）
type Sentiment struct {
	Host string
	Port int
}

type Log struct {
	Level string
	JSON  bool
	File  FileLog
}

// FileLog 非空 Filename 时启用 lumberjack 切割
type FileLog struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret string
	Issuer string
	// 统一的 token 有效期（分钟），0 表示不过期
	AccessTokenTTLMin int
	// 校验过期时间允许的时钟偏差（秒），默认 0
	LeewaySec int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Name               string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Sequence 商品 id 分配器：db（默认）或 redis
type Sequence struct {
	Backend string
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Upload 图片存储：local（默认）或 minio
type Upload struct {
	Backend     string
	Dir         string
	MaxMemoryMB int
	Minio       Minio
}

type Seed struct {
	ItemsFile string
}

type Config struct {
	App       App
	Sentiment Sentiment
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis `mapstructure:"redis"`
	Sequence  Sequence
	Upload    Upload
	Seed      Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "secondchance")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3060)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)

	v.SetDefault("sentiment.host", "0.0.0.0")
	v.SetDefault("sentiment.port", 3000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "secondchance")
	v.SetDefault("jwt.accessTokenTTLMin", 60)
	v.SetDefault("jwt.leewaySec", 0)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "secondchance.db")
	v.SetDefault("db.name", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sequence.backend", "db")

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "./public/images")
	v.SetDefault("upload.maxMemoryMB", 8)
	v.SetDefault("upload.minio.endpoint", "")
	v.SetDefault("upload.minio.accessKey", "")
	v.SetDefault("upload.minio.secretKey", "")
	v.SetDefault("upload.minio.bucket", "secondchance-images")
	v.SetDefault("upload.minio.useSSL", false)

	v.SetDefault("seed.itemsFile", "")
}

// 兼容旧部署里直接使用的环境变量
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("db.dsn", "APP_DB_DSN", "DATABASE_URL")
	_ = v.BindEnv("db.name", "APP_DB_NAME", "DATABASE_NAME")
	_ = v.BindEnv("jwt.secret", "APP_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("log.level", "APP_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("app.http.port", "APP_APP_HTTP_PORT", "PORT")
	_ = v.BindEnv("sentiment.port", "APP_SENTIMENT_PORT", "PORT")
	_ = v.BindEnv("redis.addr", "APP_REDIS_ADDR", "REDIS_ADDR")
}

// Load 读取配置：YAML（可选）+ 默认值 + 环境变量。
// path 为空时依次尝试 CONFIG_PATH 与默认路径，默认路径不存在不算错误。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultPath
			explicit = false
		}
	}
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate 检查 API 进程启动所必需的配置
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported db.driver %q", c.DB.Driver))
	}
	switch c.Sequence.Backend {
	case "db":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for sequence.backend=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported sequence.backend %q", c.Sequence.Backend))
	}
	switch c.Upload.Backend {
	case "local":
	case "minio":
		if c.Upload.Minio.Endpoint == "" {
			errs = append(errs, errors.New("upload.minio.endpoint is required for upload.backend=minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported upload.backend %q", c.Upload.Backend))
	}
	if c.JWT.AccessTokenTTLMin < 0 {
		errs = append(errs, errors.New("jwt.accessTokenTTLMin must be >= 0"))
	}
	if c.JWT.LeewaySec < 0 {
		errs = append(errs, errors.New("jwt.leewaySec must be >= 0"))
	}
	return errors.Join(errs...)
}
