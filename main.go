package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookmate-ai/bookmate-server/helpers"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/factory"
	"github.com/bookmate-ai/bookmate-server/pkg/logging"
	"github.com/bookmate-ai/bookmate-server/pkg/routers"
	"github.com/bookmate-ai/bookmate-server/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	cli.VersionPrinter = func(c *cli.Command) {
		fmt.Printf("%s\n", c.Version)
	}

	app := &cli.Command{
		Name:        "bookmate-server",
		Usage:       "Voice and chat assistant for your own book library",
		Description: "without option will start server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Configuration file",
				DefaultText: "config.yaml",
				Value:       "config.yaml",
			},
		},
		Commands: []*cli.Command{
			speakCommand(),
			askCommand(),
		},
		Action:  startServer,
		Version: version.Version,
	}
	err := app.Run(context.Background(), os.Args)
	if err != nil {
		logrus.Fatalln(err)
	}
}

// loadConfig reads the config file, applies the defaults and sets up the logger.
func loadConfig(c *cli.Command) (*config.AppConfig, error) {
	appCnf, err := helpers.ReadYamlConfigFile(c.String("config"))
	if err != nil {
		return nil, err
	}
	// set this config for global usage
	if appCnf, err = config.New(appCnf); err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(&appCnf.LogSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	appCnf.Logger = logger
	return appCnf, nil
}

func startServer(ctx context.Context, c *cli.Command) error {
	appCnf, err := loadConfig(c)
	if err != nil {
		logrus.WithError(err).Fatalln("failed to load config")
	}
	logger := appCnf.Logger

	// now prepare our server
	err = helpers.PrepareServer(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	appFactory, err := factory.NewAppFactory(ctx, appCnf)
	if err != nil {
		logger.Fatalln(err)
	}

	// boot up some services
	appFactory.Boot()

	// defer close connections
	defer helpers.HandleCloseConnections()

	rt := routers.New(appFactory.AppConfig, appFactory.Controllers)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.Infoln("exit requested, shutting down", "signal", sig)
		appFactory.Shutdown()
		_ = rt.Shutdown()
	}()

	err = rt.Listen(fmt.Sprintf(":%d", appCnf.Client.Port))
	if err != nil {
		logger.Fatalln(err)
	}
	return nil
}
