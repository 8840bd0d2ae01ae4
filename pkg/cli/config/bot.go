package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	irccontroller "github.com/fuelrats/ratboard/pkg/controller/irc"
)

// Bot is the TOML bot configuration file. It carries the chat behavior
// settings; connection and storage settings live in CLI flags.
type Bot struct {
	Signal                string   `toml:"signal"`
	Prefix                string   `toml:"prefix"`
	HelpPrefix            string   `toml:"help_prefix"`
	Enable                []string `toml:"enable"`
	Workdir               string   `toml:"workdir"`
	EDSMMaxAge            int64    `toml:"edsm_maxage"`      // seconds
	EDSMAutoRefresh       int64    `toml:"edsm_autorefresh"` // seconds, 0 disables
	ShortenerURL          string   `toml:"shortener_url"`
	BoardURL              string   `toml:"board_url"`
	CaseInsensitiveSignal bool     `toml:"case_insensitive_signal"`
}

// DefaultBot returns the configuration used when no file is given
func DefaultBot() Bot {
	return Bot{
		Signal:                "ratsignal",
		Prefix:                "!",
		HelpPrefix:            "?",
		Enable:                irccontroller.AvailableFeatures(),
		Workdir:               ".",
		EDSMMaxAge:            int64((7 * 24 * time.Hour).Seconds()),
		EDSMAutoRefresh:       0,
		CaseInsensitiveSignal: true,
	}
}

// BotFlags returns the flag pointing at the bot config file
func BotFlags(path *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the bot TOML configuration file",
			Sources:     cli.EnvVars("RATBOARD_CONFIG"),
			Destination: path,
		},
	}
}

// LoadBot reads and validates the bot configuration. An empty path returns
// the defaults.
func LoadBot(path string) (*Bot, error) {
	cfg := DefaultBot()
	if path == "" {
		return &cfg, nil
	}

	// #nosec G304 - path comes from a CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(ErrConfigNotFound, err.Error(), goerr.V("path", path))
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}
	return &cfg, nil
}

// Validate checks the settings against the feature registry and basic
// sanity rules.
func (b *Bot) Validate() error {
	if b.Signal == "" {
		return goerr.Wrap(ErrInvalidConfig, "signal must not be empty")
	}
	if b.Prefix == "" {
		return goerr.Wrap(ErrInvalidConfig, "prefix must not be empty")
	}
	if b.Prefix == b.HelpPrefix {
		return goerr.Wrap(ErrInvalidConfig, "prefix and help_prefix must differ")
	}
	if len(b.Enable) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "at least one feature must be enabled")
	}
	if err := irccontroller.ValidateFeatures(b.Enable); err != nil {
		return goerr.Wrap(err, "invalid enable list")
	}
	if b.EDSMMaxAge < 0 || b.EDSMAutoRefresh < 0 {
		return goerr.Wrap(ErrInvalidConfig, "EDSM intervals must not be negative")
	}
	return nil
}

// MaxAge returns edsm_maxage as a duration
func (b *Bot) MaxAge() time.Duration {
	return time.Duration(b.EDSMMaxAge) * time.Second
}

// AutoRefresh returns edsm_autorefresh as a duration, zero when disabled
func (b *Bot) AutoRefresh() time.Duration {
	return time.Duration(b.EDSMAutoRefresh) * time.Second
}
