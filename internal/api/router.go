package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Brownie44l1/emotion-detector/internal/api/middleware"
	"github.com/Brownie44l1/emotion-detector/internal/handlers"
)

// UploadsRoute is where saved images are served; stored image paths start
// with it (minus the leading slash).
const UploadsRoute = "/static/uploads"

type Dependencies struct {
	Service        handlers.EmotionService
	UploadDir      string
	MaxUploadBytes int
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   Dependencies
}

func NewRouter(logger *slog.Logger, deps Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Emotion Detector",
		// Multipart overhead and base64 webcam frames on top of the raw limit.
		BodyLimit: deps.MaxUploadBytes + 1<<20,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	h := handlers.NewHandler(r.deps.Service, int64(r.deps.MaxUploadBytes), r.logger)

	r.app.Get("/", h.Index)
	r.app.Get("/health", h.Health)
	r.app.Post("/predict", h.Predict)
	r.app.Post("/predict/tensor", h.PredictTensor)
	r.app.Get("/db_latest", h.Latest)

	if r.deps.UploadDir != "" {
		r.app.Static(UploadsRoute, r.deps.UploadDir)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
