package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type JudgeConfig struct {
	URL    string `env:"JUDGE_URL"`
	APIKey string `env:"JUDGE_API_KEY"`
	Model  string `env:"JUDGE_MODEL" envDefault:"default"`

	Timeout          time.Duration `env:"JUDGE_TIMEOUT" envDefault:"30s"`
	RetryMax         int           `env:"JUDGE_RETRY_MAX" envDefault:"2"`
	RetryBase        time.Duration `env:"JUDGE_RETRY_BASE" envDefault:"500ms"`
	FailureThreshold int           `env:"JUDGE_FAILURE_THRESHOLD" envDefault:"3"`
	CircuitOpen      time.Duration `env:"JUDGE_CIRCUIT_OPEN" envDefault:"30s"`
}

func LoadJudge() (JudgeConfig, error) {
	var cfg JudgeConfig
	err := env.Parse(&cfg)
	return cfg, err
}
