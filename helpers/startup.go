package helpers

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/factory"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// PrepareServer opens the database, redis and nats connections concurrently.
func PrepareServer(ctx context.Context, appCnf *config.AppConfig) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		switch appCnf.DatabaseInfo.DriverName {
		case config.DriverMySQL:
			return factory.NewDatabaseConnection(gCtx, appCnf)
		case config.DriverMongoDB:
			return factory.NewMongoConnection(gCtx, appCnf)
		}
		return nil
	})

	g.Go(func() error {
		return factory.NewRedisConnection(gCtx, appCnf)
	})

	g.Go(func() error {
		return factory.NewNatsConnection(appCnf)
	})

	return g.Wait()
}

// ReadYamlConfigFile loads .env, parses the yaml file and overlays secrets
// from the environment.
func ReadYamlConfigFile(filename string) (*config.AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	appCnf := new(config.AppConfig)
	err = yaml.Unmarshal(yamlFile, &appCnf)
	if err != nil {
		return nil, err
	}

	// get current working dir
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// set the root path
	appCnf.RootWorkingDir = wd

	if err = config.ApplyEnvOverrides(appCnf); err != nil {
		return nil, err
	}
	return appCnf, nil
}
