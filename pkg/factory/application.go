package factory

import (
	"io"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/controllers"
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/bookmate-ai/bookmate-server/pkg/services/objectstore"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	UserController        *controllers.UserController
	SessionController     *controllers.SessionController
	ChatController        *controllers.ChatController
	BookController        *controllers.BookController
	DownloadController    *controllers.DownloadController
	HealthCheckController *controllers.HealthCheckController
	WebsocketController   *controllers.WebsocketController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers *ApplicationControllers
	AppConfig   *config.AppConfig
	speechModel *models.SpeechModel
	storage     objectstore.Storage
}

func (a *Application) Boot() {
	a.Controllers.WebsocketController.SetupSocketListeners()
}

// Shutdown stops every open recognizer so the Azure sessions are released
// before the connections are closed.
func (a *Application) Shutdown() {
	a.speechModel.Shutdown()
	if c, ok := a.storage.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.AppConfig.Logger.WithError(err).Errorln("failed to close object storage")
		}
	}
}
