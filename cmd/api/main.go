package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"venue-tagger/internal/cache"
	"venue-tagger/internal/config"
	httphandler "venue-tagger/internal/http"
	"venue-tagger/internal/services/extract"
	"venue-tagger/internal/services/geocode"
	"venue-tagger/internal/services/llm"
	"venue-tagger/internal/services/pdf"
	"venue-tagger/internal/services/tagging"
	"venue-tagger/internal/services/wedding"
)

func main() {
	port := flag.String("port", "", "Port to run the server on (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.Log)

	if *port != "" {
		cfg.Server.Port = *port
	}

	completer, err := newCompleter(cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create LLM client")
	}
	retrier := llm.NewRetrier(cfg.LLM.MaxRetries, cfg.LLM.RetryBackoff)
	extractor := extract.New(extract.WithRepair(cfg.Extract.RepairJSON))

	// Interface values stay nil when Redis is not configured.
	var (
		tagCache      tagging.Cache
		locationCache geocode.Cache
		ready         func(ctx context.Context) error
	)
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		tagCache = redisCache
		locationCache = redisCache
		ready = redisCache.Ping
	} else {
		log.Info().Msg("REDIS_ADDR not set, result caching disabled")
	}

	taggingService := tagging.NewService(pdf.NewExtractor(os.TempDir()), completer, retrier, tagCache, tagging.Options{
		MaxUploadSize: cfg.Extract.MaxUploadSize,
		TextLimit:     cfg.Extract.TagTextLimit,
		CacheTTL:      cfg.Redis.TagTTL,
	})
	weddingService := wedding.NewService(completer, retrier, extractor)
	geocoder := geocode.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, locationCache, cfg.Redis.LocationTTL)

	router := httphandler.NewRouter(httphandler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	router.RegisterTagRoutes(httphandler.NewTagHandler(taggingService, cfg.Extract.MaxUploadSize))
	router.RegisterWeddingRoutes(httphandler.NewWeddingHandler(weddingService))
	router.RegisterLocationRoutes(httphandler.NewLocationHandler(geocoder))
	router.RegisterHealthRoutes(ready)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("provider", cfg.LLM.Provider).
			Str("model", completer.Model()).
			Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}

func newCompleter(cfg config.LLMConfig) (llm.Completer, error) {
	if cfg.Provider == config.ProviderAnthropic {
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, "")
	}
	return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL)
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "venue-tagger").Logger()
}
