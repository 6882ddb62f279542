package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Database *DatabaseConfig `mapstructure:"database"`
	Replica  *ReplicaConfig  `mapstructure:"replica"`
	Lotto    *LottoConfig    `mapstructure:"lotto"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	LogLevel           string   `mapstructure:"log_level"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	UploadDir          string   `mapstructure:"upload_dir"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type ReplicaConfig struct {
	Driver  string        `mapstructure:"driver"`
	Timeout time.Duration `mapstructure:"timeout"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// LottoConfig bounds ticket allocation.
type LottoConfig struct {
	MaxBatch        int     `mapstructure:"max_batch"`
	MinNumber       int     `mapstructure:"min_number"`
	MaxNumber       int     `mapstructure:"max_number"`
	Saturation      float64 `mapstructure:"saturation"`
	MaxDrawAttempts int     `mapstructure:"max_draw_attempts"`
}

// NumberSpace is the count of distinct ticket numbers.
func (c *LottoConfig) NumberSpace() int {
	return c.MaxNumber - c.MinNumber + 1
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.upload_dir", "./uploads")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("replica.driver", "none")
	v.SetDefault("replica.timeout", "5s")
	v.SetDefault("lotto.max_batch", 1000)
	v.SetDefault("lotto.min_number", 100000)
	v.SetDefault("lotto.max_number", 999999)
	v.SetDefault("lotto.saturation", 0.8)
	v.SetDefault("lotto.max_draw_attempts", 50)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// Watch reloads the file at path whenever it changes and passes the result to onChange.
// Invalid revisions are reported through onErr and otherwise ignored.
func Watch(path string, onChange func(*AppConfig), onErr func(error)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		conf, err := decode(v)
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reloading %s -> %w", e.Name, err))
			}
			return
		}
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.Gin == nil || c.Database == nil || c.Replica == nil || c.Lotto == nil {
		return fmt.Errorf("config is missing a section")
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	l := c.Lotto
	if l.MaxBatch <= 0 {
		return fmt.Errorf("lotto.max_batch must be positive")
	}
	if l.MinNumber < 0 || l.MaxNumber < l.MinNumber || l.MaxNumber > 999999 {
		return fmt.Errorf("lotto number range [%d, %d] is invalid", l.MinNumber, l.MaxNumber)
	}
	if l.Saturation <= 0 || l.Saturation > 1 {
		return fmt.Errorf("lotto.saturation must be in (0, 1]")
	}
	if l.MaxDrawAttempts <= 0 {
		return fmt.Errorf("lotto.max_draw_attempts must be positive")
	}

	return nil
}
