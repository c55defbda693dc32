package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/factory"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/providers/azure"
	"github.com/bookmate-ai/bookmate-server/version"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
)

type router struct {
	app    *fiber.App
	appCnf *config.AppConfig
	ctrl   *factory.ApplicationControllers
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	// --- Fiber App Configuration ---
	templateEngine := html.New(appConfig.Client.Path, ".html")

	if appConfig.Client.Debug {
		templateEngine.Reload(true)
		templateEngine.Debug(true)
	}

	cnf := fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		Views:       templateEngine,
		AppName:     "bookmate-server version: " + version.Version + " runtime: " + runtime.Version(),
		// uploads may be as large as upload_file_settings.max_size
		BodyLimit: int(appConfig.UploadFileSettings.MaxSize)*1024*1024 + 1024*1024,
	}

	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	// --- App Initialization & Middleware ---
	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("bookmate")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "*",
	}))
	app.Static("/assets", appConfig.Client.Path+"/assets")

	// --- Route Registration ---
	r := &router{
		app:    app,
		appCnf: appConfig,
		ctrl:   ctrl,
	}

	r.registerBaseRoutes()
	r.registerChatRoutes()
	r.registerLibraryRoutes()
	r.registerSocketRoutes()

	// --- Final Catch-All 404 Handler ---
	// This MUST be the last middleware to be registered.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not Found"})
	})

	return app
}

func (r *router) registerBaseRoutes() {
	r.app.Get("/", func(c *fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"SampleRate":    r.appCnf.AzureSpeech.SampleRate,
			"TtsSampleRate": azure.SynthesisSampleRate,
		})
	})
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/download/book/:token", r.ctrl.DownloadController.HandleDownloadBook)
}

func (r *router) registerChatRoutes() {
	r.app.Post("/create_user", r.ctrl.UserController.HandleCreateUser)
	r.app.Post("/get_user_id", r.ctrl.UserController.HandleGetUserId)

	r.app.Post("/create_session", r.ctrl.SessionController.HandleCreateSession)
	r.app.Get("/get_all_session/:userId", r.ctrl.SessionController.HandleGetAllSessions)
	r.app.Get("/session_history/:sessionId", r.ctrl.SessionController.HandleSessionHistory)
	r.app.Delete("/delete_session/:sessionId", r.ctrl.SessionController.HandleDeleteSession)

	r.app.Post("/get_bot_response", r.ctrl.ChatController.HandleGetBotResponse)
	r.app.Post("/update_message", r.ctrl.ChatController.HandleUpdateMessage)
	r.app.Post("/update_title", r.ctrl.ChatController.HandleUpdateTitle)
}

func (r *router) registerLibraryRoutes() {
	r.app.Post("/upload", r.ctrl.BookController.HandleUpload)
	r.app.Delete("/delete", r.ctrl.BookController.HandleDelete)
	r.app.Get("/generate-link", r.ctrl.BookController.HandleGenerateLink)
	r.app.Get("/api/books/:userId", r.ctrl.BookController.HandleListBooks)

	r.app.Get("/search-libgen", r.ctrl.BookController.HandleSearchCatalog)
	r.app.Post("/libgen-upload", r.ctrl.BookController.HandleCatalogUpload)
}

func (r *router) registerSocketRoutes() {
	r.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.app.Get("/ws", r.ctrl.WebsocketController.HandleWebSocket(websocket.Config{}))
}
