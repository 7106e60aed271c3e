package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type BattleConfig struct {
	DurationSeconds int `env:"BATTLE_DURATION_SECONDS" envDefault:"600"`

	// IdleRoomTTL of zero disables the idle room reaper.
	IdleRoomTTL     time.Duration `env:"BATTLE_IDLE_ROOM_TTL" envDefault:"0s"`
	JanitorInterval time.Duration `env:"BATTLE_JANITOR_INTERVAL" envDefault:"1m"`
	StreamIdleTTL   time.Duration `env:"STREAM_IDLE_TTL" envDefault:"2m"`
}

func LoadBattle() (BattleConfig, error) {
	var cfg BattleConfig
	err := env.Parse(&cfg)
	return cfg, err
}
