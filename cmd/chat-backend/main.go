package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-backend/internal/cache"
	"chat-backend/internal/config"
	"chat-backend/internal/guard"
	"chat-backend/internal/health"
	transport "chat-backend/internal/http"
	"chat-backend/internal/http/handlers"
	"chat-backend/internal/mailer"
	"chat-backend/internal/service"
	"chat-backend/internal/storage/postgres"
	"chat-backend/internal/ws"
	"chat-backend/migrations"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer str.Close()
	log.Info("postgres_connected")

	// Миграции схемы (goose поверх database/sql).
	if err := runMigrations(rootCtx, cfg.DB.DatabaseURL); err != nil {
		log.Error("migrations_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("migrations_applied")

	// Redis: незавершённые регистрации.
	pending, err := cache.NewRedisSignUpCache(cfg.Redis.RedisURL, "")
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = pending.Close() }()
	log.Info("redis_connected")

	// Почта: без SMTP-хоста работаем в режиме лога (локальная разработка).
	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Warn("smtp_disabled_log_only")
		mail = mailer.NewLogSender(log)
	}

	// Сервис.
	srvc := service.New(str, pending, mail, service.Options{
		TokenSignature:  cfg.Auth.TokenSignature,
		SessionTTL:      cfg.Auth.SessionTTL,
		VerificationTTL: cfg.Auth.VerificationTTL,
	})
	log.Info("service_initialized")

	// WS-шлюз: hub рассылает новые сообщения подписчикам чатов.
	hub := ws.NewHub(log)
	go hub.Run(rootCtx.Done())
	srvc.SetNotifier(hub)

	// Гарды.
	sessionGuard := guard.NewSessionGuard(str, str, cfg.Auth.TokenSignature, guard.SessionOptions{})
	chatGuard := guard.NewChatGuard(str)
	participantGuard := guard.NewParticipantGuard(str)

	gateway := ws.NewGateway(hub, sessionGuard, chatGuard)

	// Health-check внешних зависимостей.
	indicators := []health.Indicator{
		health.NewPingIndicator("database", str),
		health.NewPingIndicator("redis", pending),
	}
	if cfg.Health.PingURL != "" {
		indicators = append(indicators, health.NewHTTPIndicator("internet", cfg.Health.PingURL))
	}
	checker := health.NewChecker(indicators...)

	// Метрики.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := handlers.New(srvc, checker)
	api := transport.NewRouter(h, transport.Guards{
		Session:     sessionGuard,
		Chat:        chatGuard,
		Participant: participantGuard,
	}, transport.Options{
		Logger:      log,
		Timeout:     cfg.Timeouts.Service,
		Metrics:     registry,
		WSSubscribe: gateway.Subscribe,
	})

	// Операционные эндпойнты рядом с API.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", api)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Фоновая очистка просроченных сессий.
	startSessionJanitor(rootCtx, srvc, log, 30*time.Minute)

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}

	log.Info("service_stopped")
}

// runMigrations применяет embedded-миграции через отдельное
// database/sql-подключение (goose не работает поверх pgx-пула).
func runMigrations(ctx context.Context, dbURL string) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return migrations.Up(ctx, db)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

// startSessionJanitor запускает фоновую задачу, которая периодически удаляет
// просроченные авторизационные сессии.
func startSessionJanitor(ctx context.Context, srvc *service.Service, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := srvc.CleanupExpiredSessions(ctx); err != nil {
					log.Error("session_janitor_failed", slog.String("err", err.Error()))
				}
			}
		}
	}()
}
