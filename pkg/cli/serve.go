package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/fuelrats/ratboard/pkg/cli/config"
	httpctrl "github.com/fuelrats/ratboard/pkg/controller/http"
	irccontroller "github.com/fuelrats/ratboard/pkg/controller/irc"
	"github.com/fuelrats/ratboard/pkg/service/edsm"
	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
	"github.com/fuelrats/ratboard/pkg/service/shortener"
	"github.com/fuelrats/ratboard/pkg/service/worker"
	"github.com/fuelrats/ratboard/pkg/usecase"
	"github.com/fuelrats/ratboard/pkg/utils/logging"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var configPath string
	var repoCfg config.Repository
	var ircCfg config.IRC
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Tracker HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RATBOARD_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, config.BotFlags(&configPath)...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, ircCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Connect to IRC and run the board tracker",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			botCfg, err := config.LoadBot(configPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load bot configuration")
			}

			sentryCloser, err := sentryCfg.Configure(version)
			if err != nil {
				return goerr.Wrap(err, "failed to configure error reporting")
			}
			defer sentryCloser()

			ircConf, err := ircCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "invalid IRC configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			if err := uc.Board.Load(ctx); err != nil {
				return goerr.Wrap(err, "failed to load open cases")
			}
			logging.Default().Info("Board loaded", "open_cases", len(uc.Board.ListOpen()))

			var detectorOpts []usecase.DetectorOption
			if !botCfg.CaseInsensitiveSignal {
				detectorOpts = append(detectorOpts, usecase.WithCaseSensitive())
			}
			detector := usecase.NewDetector(botCfg.Signal,
				[]string{botCfg.Prefix, botCfg.HelpPrefix}, detectorOpts...)

			cache, err := edsm.NewCache(botCfg.Workdir, botCfg.MaxAge())
			if err != nil {
				return goerr.Wrap(err, "failed to open EDSM cache")
			}
			edsmClient := edsm.New(cache)

			var refreshWorker *worker.EDSMRefreshWorker
			if interval := botCfg.AutoRefresh(); interval > 0 {
				refreshWorker = worker.NewEDSMRefreshWorker(edsmClient, cache, interval)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start EDSM refresh worker")
				}
				defer refreshWorker.Stop()
			}

			shortenerClient := shortener.New(botCfg.ShortenerURL)
			if shortenerClient.Enabled() {
				logging.Default().Info("URL shortener enabled", "endpoint", botCfg.ShortenerURL)
			}

			tracker := httpctrl.New(uc.Board)
			uc.Board.Notify(tracker.Hub().Publish)

			deps := &irccontroller.Deps{
				UseCases:  uc,
				Detector:  detector,
				EDSM:      edsmClient,
				Shortener: shortenerClient,
				Config: irccontroller.Config{
					Prefix:     botCfg.Prefix,
					HelpPrefix: botCfg.HelpPrefix,
					Features:   botCfg.Enable,
					BoardURL:   botCfg.BoardURL,
				},
			}

			var bridge *irccontroller.Bridge
			ircClient := ircsvc.New(ircConf, func(ctx context.Context, msg ircsvc.Message) {
				bridge.HandleMessage(ctx, msg)
			})
			bridge = irccontroller.NewBridge(ircClient, deps)

			server := &http.Server{
				Addr:              addr,
				Handler:           tracker,
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logging.Default().Info("Starting tracker HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "tracker server failed")
				}
				return nil
			})

			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})

			g.Go(func() error {
				return ircClient.Run(ctx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logging.Default().Info("Shutdown completed")
			return nil
		},
	}
}
