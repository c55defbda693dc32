//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/controllers"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/providers/azure"
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/bookmate-ai/bookmate-server/pkg/services/catalog"
	"github.com/bookmate-ai/bookmate-server/pkg/services/nats"
	"github.com/bookmate-ai/bookmate-server/pkg/services/redis"
	"github.com/google/wire"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	NewStore,
	NewObjectStorage,
	NewChatProvider,
	NewSpeechProvider,
	NewCatalogClient,
	redisservice.New,
	natsservice.New,
	wire.Bind(new(models.UploadLocker), new(*redisservice.RedisService)),
	wire.Bind(new(models.CatalogService), new(*catalog.Client)),
	wire.Bind(new(insights.SpeechProvider), new(*azure.AzureProvider)),
	wire.Bind(new(insights.Synthesizer), new(*azure.AzureProvider)),
)

// build the dependency set for models
var modelSet = wire.NewSet(
	models.NewUserModel,
	models.NewSessionModel,
	models.NewChatModel,
	models.NewBookModel,
	models.NewSpeechModel,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewUserController,
	controllers.NewSessionController,
	controllers.NewChatController,
	controllers.NewBookController,
	controllers.NewDownloadController,
	controllers.NewHealthCheckController,
	controllers.NewWebsocketController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		modelSet,
		controllerSet,
		// Provide the whole AppConfig, and also specific fields needed by constructors.
		wire.FieldsOf(new(*config.AppConfig), "RDS", "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "Controllers", "AppConfig", "speechModel", "storage"),
	)
	return nil, nil // This return value is ignored.
}
