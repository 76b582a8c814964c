package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	DbDsn    string
	TgToken  string
	TgChat   int64
	LogLevel string
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the process-wide configuration, reading .env on first use.
// A missing .env is fine: the environment alone is enough.
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("cannot read .env", zap.Error(err))
		}
		config = fromEnv()
	})
	return config
}

func fromEnv() *Config {
	c := &Config{
		DbDsn:    os.Getenv("DD_DB_DSN"),
		TgToken:  os.Getenv("DD_TG_TOKEN"),
		LogLevel: os.Getenv("DD_LOG_LEVEL"),
	}
	if chat := os.Getenv("DD_TG_CHAT"); chat != "" {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			zap.L().Warn("DD_TG_CHAT is not a chat id", zap.String("value", chat))
		}
		c.TgChat = id
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// TelegramEnabled reports whether reports can be delivered to a chat.
func (c *Config) TelegramEnabled() bool {
	return c.TgToken != "" && c.TgChat != 0
}
