package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	BotToken   string `env:"BOT_TOKEN"`
	AdminToken string `env:"ADMIN_TOKEN,required"`

	JoinRequestPoints int `env:"JOIN_REQUEST_POINTS" envDefault:"10"`
	ReferralPoints    int `env:"REFERRAL_POINTS" envDefault:"10"`

	OracleTimeout   time.Duration `env:"ORACLE_TIMEOUT" envDefault:"5s"`
	RecheckInterval time.Duration `env:"RECHECK_INTERVAL" envDefault:"0"` // 0 disables the periodic re-check worker
	RecheckWindow   time.Duration `env:"RECHECK_WINDOW" envDefault:"24h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
