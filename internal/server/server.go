package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"quizbuzzer/internal/archive"
	"quizbuzzer/internal/broadcast"
	"quizbuzzer/internal/config"
	"quizbuzzer/internal/db"
	"quizbuzzer/internal/events"
	"quizbuzzer/internal/feed"
	"quizbuzzer/internal/rooms"
	"quizbuzzer/internal/session"
	"quizbuzzer/internal/wshub"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sendBuffer = 64

type Server struct {
	Rooms          *rooms.Store
	Hub            *wshub.Hub
	Spectators     *broadcast.Broadcaster
	DB             *db.DB // nil if no database configured
	AllowedOrigins []string
}

// Routes builds the HTTP surface wrapped in CORS.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /rooms/{code}", s.handleRoomState)
	mux.HandleFunc("GET /rooms/{code}/events", s.handleEvents)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /analytics/leaderboard", s.handleAnalyticsLeaderboard)
	mux.HandleFunc("GET /analytics/rooms/{code}", s.handleAnalyticsRoom)
	mux.HandleFunc("GET /analytics/players/{name}", s.handleAnalyticsPlayer)

	c := cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) anyOrigin() bool {
	return len(s.AllowedOrigins) == 0 || slices.Contains(s.AllowedOrigins, "*")
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func Run() error {
	config.LoadDotEnv()
	appCfg := config.Load()
	setupLogging(appCfg.LogLevel)

	defaults, err := config.LoadRoomDefaults(appCfg.RoomDefaultsFile)
	if err != nil {
		log.Warn().Err(err).Str("file", appCfg.RoomDefaultsFile).Msg("using built-in room defaults")
	}

	bus := events.NewBus(1000)
	hub := wshub.NewHub()
	spectators := broadcast.NewBroadcaster()
	roomStore := rooms.NewStore(rooms.Config{
		Session: session.Config{
			Settings:     defaults,
			TickInterval: appCfg.TickInterval,
			Bus:          bus,
		},
		Publisher: newRoomPublisher(hub, spectators),
		IdleTTL:   appCfg.RoomIdleTTL,
	})

	srv := &Server{
		Rooms:          roomStore,
		Hub:            hub,
		Spectators:     spectators,
		AllowedOrigins: appCfg.AllowedOrigins,
	}

	writer := archive.NewWriter(bus, archive.Config{})

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to database, running without archive")
		} else {
			defer database.Close()
			if err := database.Migrate(context.Background()); err != nil {
				log.Error().Err(err).Msg("migration failed")
			}
			srv.DB = database
			writer.AddSink("postgres", archive.SinkFunc(database.BatchRecordEvents))
		}
	} else {
		log.Info().Msg("DATABASE_URL not set, running without database")
	}

	// Optional NATS feed
	if appCfg.NATSURL != "" {
		pub, err := feed.NewPublisher(feed.DefaultConfig(appCfg.NATSURL, appCfg.NATSSubject))
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to NATS, running without event feed")
		} else {
			defer pub.Close()
			writer.AddSink("nats", pub)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	archiveDone := make(chan struct{})
	go func() {
		defer close(archiveDone)
		writer.Run(ctx)
	}()

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + appCfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// websocket and SSE handlers end when the process is told to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Int("sinks", writer.Sinks()).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		roomStore.Stop()
		<-archiveDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	roomStore.Stop()
	<-archiveDone

	log.Info().Msg("shutdown complete")
	return nil
}
