package cli

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fuelrats/ratboard/pkg/cli/config"
	irccontroller "github.com/fuelrats/ratboard/pkg/controller/irc"
)

func cmdValidate() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the bot configuration file",
		Flags:   config.BotFlags(&configPath),
		Action: func(ctx context.Context, c *cli.Command) error {
			bad := color.New(color.FgRed, color.Bold)
			good := color.New(color.FgGreen)

			cfg, err := config.LoadBot(configPath)
			if err != nil {
				bad.Println("✗ configuration is invalid") //nolint:errcheck
				return goerr.Wrap(err, "configuration validation failed")
			}

			good.Println("✓ configuration is valid") //nolint:errcheck
			color.New(color.Faint).Printf( //nolint:errcheck
				"  signal=%q prefix=%q help_prefix=%q features=[%s]\n",
				cfg.Signal, cfg.Prefix, cfg.HelpPrefix, strings.Join(cfg.Enable, ", "))

			unused := diffFeatures(irccontroller.AvailableFeatures(), cfg.Enable)
			if len(unused) > 0 {
				color.New(color.FgYellow).Printf( //nolint:errcheck
					"  note: available but disabled: %s\n", strings.Join(unused, ", "))
			}
			return nil
		},
	}
}

func diffFeatures(all, enabled []string) []string {
	on := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		on[name] = true
	}
	var off []string
	for _, name := range all {
		if !on[name] {
			off = append(off, name)
		}
	}
	return off
}
