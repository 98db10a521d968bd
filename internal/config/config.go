package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	YooKassa         YooKassaConfig          `env:",prefix=YOOKASSA_"`
	Donations        DonationsConfig         `env:",prefix=DONATIONS_"`
}

type TelegramConfig struct {
	BotToken         string        `env:"BOT_TOKEN,required"`
	Timeout          time.Duration `env:"TIMEOUT,default=30s"`
	AdminTelegramIDs []int64       `env:"ADMIN_IDS"`
}

type YooKassaConfig struct {
	ShopID      string `env:"SHOP_ID,required"`
	SecretKey   string `env:"SECRET_KEY,required"`
	ReturnURL   string `env:"RETURN_URL,default=https://t.me"`
	MockPayment bool   `env:"MOCK_PAYMENT,default=false"`
}

type DonationsConfig struct {
	Currency      string        `env:"CURRENCY,default=RUB"`
	CheckInterval time.Duration `env:"CHECK_INTERVAL,default=15s"`
	MaxAmount     float64       `env:"MAX_AMOUNT,default=100000"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string        `env:"PATH,default=./data/jardam.db"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  time.Duration `env:"MAX_LIFETIME,default=5m"`
}
