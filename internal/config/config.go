package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token           string
		AdminChatID     int64   `mapstructure:"admin_chat_id"`
		OperatorChatIDs []int64 `mapstructure:"operator_chat_ids"`
		PollTimeout     int     `mapstructure:"poll_timeout"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

// Load reads the YAML file at path. A .env in the working directory is
// applied first, then APP_* variables override file values
// (APP_TELEGRAM_TOKEN, APP_POSTGRES_DSN, ...).
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("http.addr", ":8080")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Location resolves app.timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsOperator reports whether a chat may use the bot.
func (c Config) IsOperator(chatID int64) bool {
	if chatID != 0 && chatID == c.Telegram.AdminChatID {
		return true
	}
	for _, id := range c.Telegram.OperatorChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
