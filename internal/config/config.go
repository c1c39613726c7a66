package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/DoyleJ11/quiz-buzzer-backend/internal/auth"
)

const EnvPrefix = "QUIZ"

type Config struct {
	HTTP struct {
		Bind      string `mapstructure:"bind"`
		Port      int    `mapstructure:"port"`
		PublicURL string `mapstructure:"publicURL"`
		// Browser origins allowed to open /ws besides the server's own host.
		OriginPatterns []string `mapstructure:"originPatterns"`
	} `mapstructure:"http"`

	GameMaster  auth.Credential `mapstructure:"gameMaster"`
	PlayerLogin auth.Credential `mapstructure:"playerLogin"`

	QuestionsFile string `mapstructure:"questionsFile"`

	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`

	Results struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"results"`
}

func Default() Config {
	var c Config
	c.HTTP.Bind = "0.0.0.0"
	c.HTTP.Port = 8080
	c.QuestionsFile = "questions.json"
	c.Log.Level = "info"
	return c
}

// Load reads file over the defaults in config, which must be a pointer.
// Every known key can be overridden from the environment as
// QUIZ_<SECTION>_<KEY>. An empty file name loads defaults and env only.
func Load(file string, config *Config) error {
	v := viper.New()
	m := make(map[string]any)

	if err := mapstructure.Decode(config, &m); err != nil {
		return fmt.Errorf("mapstructure: %w", err)
	}

	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("merge config map: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("read config from file %s: %w", file, err)
		}
	}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("invalid http.port (must be between 1-65535 inclusive): %d", c.HTTP.Port))
	}
	if c.GameMaster.Username == "" || c.GameMaster.Password == "" {
		err = multierr.Append(err, errors.New("gameMaster.username and gameMaster.password are required"))
	}
	if c.PlayerLogin.Username == "" || c.PlayerLogin.Password == "" {
		err = multierr.Append(err, errors.New("playerLogin.username and playerLogin.password are required"))
	}
	if c.GameMaster.Username != "" && c.GameMaster == c.PlayerLogin {
		err = multierr.Append(err, errors.New("gameMaster and playerLogin must differ"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("invalid log.level %q", c.Log.Level))
	}
	return err
}

func (c Config) Credentials() auth.Credentials {
	return auth.Credentials{Host: c.GameMaster, Player: c.PlayerLogin}
}
