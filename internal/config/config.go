package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
		PollTimeout int   `mapstructure:"poll_timeout"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Backend struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`

	// Postgres опционален: без DSN состояние диалогов живёт в памяти.
	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	WoodFlow struct {
		AcceptanceFactor float64 `mapstructure:"acceptance_factor"`
		ReceptionID      int64   `mapstructure:"reception_id"`
		WorkOrderID      int64   `mapstructure:"work_order_id"`
		DefaultGroupID   int64   `mapstructure:"default_group_id"`
		Rater            string  `mapstructure:"rater"`
	} `mapstructure:"woodflow"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "America/Guayaquil")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("http.addr", ":8081")
	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("woodflow.acceptance_factor", 0.9)
	v.SetDefault("woodflow.reception_id", 1)
	v.SetDefault("woodflow.work_order_id", 1)
	v.SetDefault("woodflow.default_group_id", 1)
	v.SetDefault("woodflow.rater", "Supervisor Movil")
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	// APP_BACKEND_BASE_URL -> backend.base_url
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := c.validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend.base_url is required")
	}
	if f := c.WoodFlow.AcceptanceFactor; f <= 0 || f > 1 {
		return fmt.Errorf("woodflow.acceptance_factor must be in (0,1], got %v", f)
	}
	return nil
}

// Location возвращает часовой пояс завода; при ошибке: UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
