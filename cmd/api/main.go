package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/freerange/chatwidget/backend/internal/config"
	"github.com/freerange/chatwidget/backend/internal/handler"
	"github.com/freerange/chatwidget/backend/internal/handler/proxy"
	"github.com/freerange/chatwidget/backend/internal/model/suggestion"
	"github.com/freerange/chatwidget/backend/internal/relay"
	"github.com/freerange/chatwidget/backend/internal/session"
	"github.com/freerange/chatwidget/backend/internal/service/turn"
	"github.com/freerange/chatwidget/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Pick the session store: Redis when configured, in-memory otherwise.
	var sessionStore store.Store
	if cfg.Store.RedisURL != "" {
		redisStore, err := store.NewRedisStore(cfg.Store.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect session store: %v", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		log.Println("Redis session store initialized")
	} else {
		sessionStore = store.NewMemoryStore()
		log.Println("REDIS_URL not set, keeping sessions in memory")
	}

	sessions := session.NewManager(sessionStore)
	if _, err := sessions.LoadOrCreate(ctx); err != nil {
		log.Fatalf("failed to initialize session: %v", err)
	}

	// Relay endpoints come up only with a configured backend host.
	var turns *turn.Service
	var relayProxy *proxy.Handler
	if cfg.Backend.Enabled() {
		relayClient := relay.NewClient(cfg.Backend.BaseURL, cfg.Backend.StoreID, cfg.Backend.Timeout)
		turns = turn.NewService(sessions, relayClient)
		relayProxy = proxy.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
		log.Printf("relay targeting %s", cfg.Backend.BaseURL)
	} else {
		log.Println("BACKEND_BASE_URL not set, relay endpoints disabled")
	}

	suggestions := suggestion.NewMemoryStore(suggestion.Seed())

	router := handler.NewRouter(sessions, turns, suggestions, relayProxy)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat widget backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
