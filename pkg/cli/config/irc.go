package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
)

// IRC holds CLI flags for the IRC connection
type IRC struct {
	server   string
	nick     string
	user     string
	password string
	useTLS   bool
	channels []string
}

// Flags returns CLI flags for IRC configuration
func (i *IRC) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "irc-server",
			Usage:       "IRC server address (host:port)",
			Sources:     cli.EnvVars("RATBOARD_IRC_SERVER"),
			Destination: &i.server,
		},
		&cli.StringFlag{
			Name:        "irc-nick",
			Usage:       "Bot nickname",
			Value:       "ratboard",
			Sources:     cli.EnvVars("RATBOARD_IRC_NICK"),
			Destination: &i.nick,
		},
		&cli.StringFlag{
			Name:        "irc-user",
			Usage:       "IRC username (defaults to the nickname)",
			Sources:     cli.EnvVars("RATBOARD_IRC_USER"),
			Destination: &i.user,
		},
		&cli.StringFlag{
			Name:        "irc-password",
			Usage:       "SASL password (SASL is enabled when set)",
			Sources:     cli.EnvVars("RATBOARD_IRC_PASSWORD"),
			Destination: &i.password,
		},
		&cli.BoolFlag{
			Name:        "irc-tls",
			Usage:       "Connect with TLS",
			Value:       true,
			Sources:     cli.EnvVars("RATBOARD_IRC_TLS"),
			Destination: &i.useTLS,
		},
		&cli.StringSliceFlag{
			Name:        "irc-channel",
			Usage:       "Channel to join (repeatable)",
			Sources:     cli.EnvVars("RATBOARD_IRC_CHANNELS"),
			Destination: &i.channels,
		},
	}
}

// Configure validates the flags and builds the transport config
func (i *IRC) Configure() (ircsvc.Config, error) {
	if i.server == "" {
		return ircsvc.Config{}, goerr.New("irc-server is required")
	}
	if len(i.channels) == 0 {
		return ircsvc.Config{}, goerr.New("at least one irc-channel is required")
	}
	return ircsvc.Config{
		Server:   i.server,
		Nick:     i.nick,
		User:     i.user,
		Password: i.password,
		UseTLS:   i.useTLS,
		Channels: i.channels,
	}, nil
}
