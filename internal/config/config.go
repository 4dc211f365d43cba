package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Token    TokenConfig    `yaml:"token"`
	Password PasswordConfig `yaml:"password"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConf      `yaml:"redis"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// TokenConfig holds both signing secrets. They must differ: purpose is bound to the secret.
type TokenConfig struct {
	Algorithm     string        `yaml:"algorithm" env:"JWT_ALGORITHM" env-default:"HS256"`
	AccessSecret  string        `yaml:"access_secret" env:"JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"30m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"168h"`
}

type PasswordConfig struct {
	Cost int `yaml:"cost" env:"BCRYPT_COST" env-default:"10"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &cfg
}

func (c *Config) Validate() error {
	switch c.Token.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("token.algorithm: unsupported %q", c.Token.Algorithm)
	}

	if c.Token.AccessSecret == "" || c.Token.RefreshSecret == "" {
		return errors.New("token: access_secret and refresh_secret are required")
	}

	if c.Token.AccessSecret == c.Token.RefreshSecret {
		return errors.New("token: access_secret and refresh_secret must differ")
	}

	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token: ttl must be positive")
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver)
	}

	return nil
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
