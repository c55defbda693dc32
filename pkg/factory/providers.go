package factory

import (
	"context"
	"fmt"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/providers/azure"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/providers/google"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/providers/openai"
	"github.com/bookmate-ai/bookmate-server/pkg/services/catalog"
	"github.com/bookmate-ai/bookmate-server/pkg/services/db"
	"github.com/bookmate-ai/bookmate-server/pkg/services/mongo"
	"github.com/bookmate-ai/bookmate-server/pkg/services/objectstore"
	"github.com/bookmate-ai/bookmate-server/pkg/services/redis"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
)

// NewStore returns the store of the configured database driver and makes
// sure its schema or indexes exist.
func NewStore(ctx context.Context, app *config.AppConfig) (store.Store, error) {
	switch app.DatabaseInfo.DriverName {
	case config.DriverMySQL:
		ds := dbservice.New(app.DB, app.Logger)
		if err := ds.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return ds, nil
	case config.DriverMongoDB:
		ms := mongoservice.New(app.MongoDB, app.Logger)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return ms, nil
	case config.DriverMemory:
		app.Logger.Warnln("using in-memory store, data will be lost on restart")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", app.DatabaseInfo.DriverName)
}

func NewObjectStorage(ctx context.Context, app *config.AppConfig) (objectstore.Storage, error) {
	switch app.StorageInfo.Driver {
	case config.StorageGCS:
		return objectstore.NewGcsStorage(ctx, app.StorageInfo.Gcs, app.Logger)
	case config.StorageLocal:
		return objectstore.NewLocalStorage(app.StorageInfo.Local, app.Client.ApiKey, app.Client.Secret)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", app.StorageInfo.Driver)
}

func NewChatProvider(ctx context.Context, app *config.AppConfig) (insights.ChatProvider, error) {
	switch app.ChatSettings.Provider {
	case config.ChatProviderOpenAI:
		return openai.NewProvider(app.ChatSettings, app.Logger)
	case config.ChatProviderGoogle:
		return google.NewProvider(ctx, app.ChatSettings, app.Logger)
	}
	return nil, fmt.Errorf("unsupported chat provider %q", app.ChatSettings.Provider)
}

func NewSpeechProvider(app *config.AppConfig) *azure.AzureProvider {
	if app.AzureSpeech.SubscriptionKey == "" || app.AzureSpeech.ServiceRegion == "" {
		app.Logger.Warnln(config.MissingSpeechCreds)
	}
	return azure.NewProvider(app.AzureSpeech, app.Logger)
}

func NewCatalogClient(app *config.AppConfig, rs *redisservice.RedisService) *catalog.Client {
	return catalog.New(app.CatalogSettings, rs, app.Logger)
}
