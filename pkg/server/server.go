package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/pricelist-atlas/pkg/handlers/chatbot"
	"github.com/de-tools/pricelist-atlas/pkg/handlers/pricelist"
	atlasmiddleware "github.com/de-tools/pricelist-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Catalog pricelist.Catalog
	Chat    chatbot.Replier
	Logger  zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Family is the pricing family served under /api/{family}/...
	Family       string
	CORSOrigins  []string
	Dependencies Dependencies
}

func ConfigureRouter(config Config) http.Handler {
	logger := config.Dependencies.Logger
	metrics := atlasmiddleware.NewMetrics()

	priceHandler := pricelist.NewHandler(config.Dependencies.Catalog)
	chatHandler := chatbot.NewHandler(config.Dependencies.Chat, metrics.ChatFailure)

	origins := config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(atlasmiddleware.Logger(&logger))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/health", pricelist.Health)
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/getAllServices", priceHandler.GetAllServices)
		r.Get("/durations", priceHandler.GetDurations)
		r.Post("/chatbot", chatHandler.PostChat)

		r.Route("/"+config.Family, func(r chi.Router) {
			r.Get("/regions/{region}", priceHandler.GetRegionFile)
			r.Get("/{file}", priceHandler.GetFile)
		})

		r.Route("/options", func(r chi.Router) {
			r.Get("/services", priceHandler.GetServiceOptions)
			r.Get("/versions", priceHandler.GetVersionOptions)
			r.Get("/regions", priceHandler.GetRegionOptions)
			r.Get("/products", priceHandler.GetProductOptions)
		})

		r.Get("/pricing/table", priceHandler.GetPricingTable)
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	logger := config.Dependencies.Logger
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           ConfigureRouter(config),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
