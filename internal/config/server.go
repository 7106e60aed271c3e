package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Empty DSN runs the reward ledger on the in-memory store.
	PostgresDSN string `env:"POSTGRES_DSN"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RewardTimezone string `env:"REWARD_TIMEZONE" envDefault:"UTC"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
