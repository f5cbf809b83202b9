package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel  string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	PublicURL string  `yaml:"public-url" env:"PUBLIC_URL" env-default:"http://localhost:9090"`
	Storage   Storage `yaml:"storage"`
	Redis     Redis   `yaml:"redis"`
	Rooms     Rooms   `yaml:"rooms"`
	Quiz      Quiz    `yaml:"quiz"`
}

type Storage struct {
	Driver   string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	Capacity int    `yaml:"capacity" env:"STORAGE_CAPACITY" env-default:"500"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Rooms struct {
	CodeAttempts int `yaml:"code-attempts" env:"ROOMS_CODE_ATTEMPTS" env-default:"200"`
	// Seed fixes the random source for codes, quiz draws and the bot; 0 seeds
	// from crypto randomness.
	Seed uint64 `yaml:"seed" env:"ROOMS_SEED" env-default:"0"`
}

type Quiz struct {
	DefaultRounds int `yaml:"default-rounds" env:"QUIZ_DEFAULT_ROUNDS" env-default:"50"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	if that.Storage.Driver != StorageMemory && that.Storage.Driver != StorageRedis {
		return fmt.Errorf("unknown storage driver %q", that.Storage.Driver)
	}

	if that.Storage.Capacity < 1 {
		return fmt.Errorf("storage capacity must be positive, got %d", that.Storage.Capacity)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
